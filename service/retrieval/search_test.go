package retrieval

import (
	"context"
	"testing"

	"github.com/Quockhanh0712/vielegalrag-demo/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	legal []Passage
	user  []Passage

	legalTopK int
	userTopK  int
	userID    string
}

func (f *fakeStore) SearchLegal(_ context.Context, _ []float32, topK int) ([]Passage, error) {
	f.legalTopK = topK
	return f.legal, nil
}

func (f *fakeStore) SearchUser(_ context.Context, _ []float32, userID string, topK int) ([]Passage, error) {
	f.userTopK = topK
	f.userID = userID
	return f.user, nil
}

func legalPassage(id string, score float64) Passage {
	return Passage{ID: id, Text: id, SourceType: SourceTypeLegal, Score: score}
}

func userPassage(id string, score float64) Passage {
	return Passage{ID: id, Text: id, SourceType: SourceTypeUserDocument, Score: score}
}

func TestSearchLegalMode(t *testing.T) {
	store := &fakeStore{legal: []Passage{legalPassage("a", 0.9), legalPassage("b", 0.8)}}
	s := NewSearcher(store)

	got, err := s.Search(context.Background(), []float32{0.1}, "", ModeLegal, 10)

	require.NoError(t, err)
	assert.Equal(t, 10, store.legalTopK)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
}

func TestSearchUserModeRequiresUserID(t *testing.T) {
	s := NewSearcher(&fakeStore{})

	_, err := s.Search(context.Background(), []float32{0.1}, "", ModeUser, 10)

	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, "missing_user_id", errs.CodeOf(err))
}

func TestSearchHybridSplitsTopK(t *testing.T) {
	store := &fakeStore{
		legal: []Passage{legalPassage("l1", 0.9)},
		user:  []Passage{userPassage("u1", 0.95)},
	}
	s := NewSearcher(store)

	got, err := s.Search(context.Background(), []float32{0.1}, "u42", ModeHybrid, 10)

	require.NoError(t, err)
	assert.Equal(t, 10, store.legalTopK)
	assert.Equal(t, 5, store.userTopK)
	assert.Equal(t, "u42", store.userID)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].ID)
}

func TestSearchHybridUserLimitNeverZero(t *testing.T) {
	store := &fakeStore{
		legal: []Passage{legalPassage("l1", 0.9)},
		user:  []Passage{userPassage("u1", 0.95)},
	}
	s := NewSearcher(store)

	got, err := s.Search(context.Background(), []float32{0.1}, "u42", ModeHybrid, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, store.legalTopK)
	assert.Equal(t, 1, store.userTopK)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].ID)
}

func TestSearchHybridWithoutUserIDSkipsUserCollection(t *testing.T) {
	store := &fakeStore{legal: []Passage{legalPassage("l1", 0.9)}}
	s := NewSearcher(store)

	got, err := s.Search(context.Background(), []float32{0.1}, "", ModeHybrid, 10)

	require.NoError(t, err)
	assert.Equal(t, 0, store.userTopK)
	require.Len(t, got, 1)
	assert.Equal(t, "l1", got[0].ID)
}

func TestSearchUnknownMode(t *testing.T) {
	s := NewSearcher(&fakeStore{})

	_, err := s.Search(context.Background(), []float32{0.1}, "", "fuzzy", 10)

	require.Error(t, err)
	assert.Equal(t, "invalid_search_mode", errs.CodeOf(err))
}

func TestMergeHybridOrdersByScoreDescending(t *testing.T) {
	legal := []Passage{legalPassage("l1", 0.9), legalPassage("l2", 0.5)}
	user := []Passage{userPassage("u1", 0.7)}

	merged := MergeHybrid(legal, user, 10)

	require.Len(t, merged, 3)
	assert.Equal(t, []string{"l1", "u1", "l2"}, ids(merged))
	for i := 1; i < len(merged); i++ {
		assert.GreaterOrEqual(t, merged[i-1].Score, merged[i].Score)
	}
}

func TestMergeHybridTieBreaksLegalFirst(t *testing.T) {
	legal := []Passage{legalPassage("l1", 0.7)}
	user := []Passage{userPassage("u1", 0.7)}

	merged := MergeHybrid(legal, user, 10)

	assert.Equal(t, []string{"l1", "u1"}, ids(merged))

	// 合并顺序与入参顺序无关
	merged = MergeHybrid([]Passage{legalPassage("l2", 0.7)}, []Passage{userPassage("u2", 0.7)}, 10)
	assert.Equal(t, []string{"l2", "u2"}, ids(merged))
}

func TestMergeHybridTruncatesToTopK(t *testing.T) {
	legal := []Passage{legalPassage("l1", 0.9), legalPassage("l2", 0.8), legalPassage("l3", 0.7)}

	merged := MergeHybrid(legal, nil, 2)

	assert.Equal(t, []string{"l1", "l2"}, ids(merged))
}

func TestMergeHybridEmptyInputs(t *testing.T) {
	assert.Empty(t, MergeHybrid(nil, nil, 10))
}

func ids(passages []Passage) []string {
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		out = append(out, p.ID)
	}
	return out
}
