package dao

import (
	"errors"

	"github.com/Quockhanh0712/vielegalrag-demo/model"

	"gorm.io/gorm"
)

func SaveUserDocument(doc *model.UserDocument) error {
	return DB.Create(doc).Error
}

func GetUserDocumentsByUserID(userID string) ([]model.UserDocument, error) {
	var docs []model.UserDocument
	if err := DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func GetUserDocumentByDocID(docID string) (*model.UserDocument, error) {
	var doc model.UserDocument
	if err := DB.Where("doc_id = ?", docID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func DeleteUserDocumentByDocID(docID string) error {
	return DB.Where("doc_id = ?", docID).
		Delete(&model.UserDocument{}).Error
}
