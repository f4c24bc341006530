package rag

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"
)

//go:embed prompts/legal_system.txt
var legalSystemPrompt string

// NoResultAnswer is returned when retrieval finds nothing relevant; the LLM is
// not called in that case.
const NoResultAnswer = "Xin lỗi, tôi không tìm thấy thông tin liên quan đến câu hỏi của bạn trong cơ sở dữ liệu pháp luật."

// buildContext renders passages as numbered blocks with their legal citation,
// the shape the system prompt instructs the model to cite from.
func buildContext(passages []retrieval.Passage) string {
	blocks := make([]string, 0, len(passages))

	for i, p := range passages {
		citation := ""
		if p.DieuNumber != "" {
			citation = fmt.Sprintf("Điều %s", p.DieuNumber)
			if p.KhoanNumber != "" {
				citation += fmt.Sprintf(", Khoản %s", p.KhoanNumber)
			}
		}

		if citation != "" {
			blocks = append(blocks, fmt.Sprintf("[%d] %s:\n%s", i+1, citation, p.Text))
		} else {
			blocks = append(blocks, fmt.Sprintf("[%d] %s", i+1, p.Text))
		}
	}

	return strings.Join(blocks, "\n\n")
}

func buildPrompt(question, context string) string {
	var b strings.Builder
	b.WriteString("Ngữ cảnh pháp luật:\n\n")
	b.WriteString(context)
	b.WriteString("\n\nCâu hỏi: ")
	b.WriteString(question)
	b.WriteString("\n\nTrả lời:")
	return b.String()
}
