package titles

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/dao"
	"github.com/Quockhanh0712/vielegalrag-demo/service/llm"
)

const (
	taskChanSize = 100
	workerNum    = 4

	titleTemperature = 0.3
	titleMaxTokens   = 32
	maxTitleRunes    = 60
)

//go:embed prompts/title.txt
var titlePrompt string

const titleSystemPrompt = "Bạn là trợ lý đặt tiêu đề ngắn gọn cho phiên trò chuyện."

// TitleTask asks for a refined title on a freshly created session.
type TitleTask struct {
	SessionID string
	Question  string
}

// Refiner replaces the truncated first-message session title with a short
// LLM-generated one. Tasks run in the background and never block a chat turn.
type Refiner struct {
	router    *llm.Router
	taskChan  chan TitleTask
	workerNum int
}

func NewRefiner(router *llm.Router) *Refiner {
	return &Refiner{
		router:    router,
		taskChan:  make(chan TitleTask, taskChanSize),
		workerNum: workerNum,
	}
}

func (r *Refiner) Run(ctx context.Context) {
	for i := 1; i <= r.workerNum; i++ {
		go r.executeRefinement(ctx, i)
	}
}

// Register enqueues a task, dropping it when the queue is full. A lost title
// refinement only leaves the truncated default title in place.
func (r *Refiner) Register(task TitleTask) {
	if !config.Cfg.Titles.Enabled {
		return
	}
	select {
	case r.taskChan <- task:
	default:
		slog.Warn("Title task queue full, dropping task", "session_id", task.SessionID)
	}
}

func (r *Refiner) executeRefinement(ctx context.Context, id int) {
	slog.Info("Starting title worker", "worker_id", id)
	defer slog.Info("Title worker exit", "worker_id", id)

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-r.taskChan:
			if !ok {
				return
			}

			title, err := r.generateTitle(ctx, task.Question)
			if err != nil {
				slog.Error("Failed to generate session title",
					"session_id", task.SessionID,
					"err", err,
				)
				continue
			}
			if title == "" {
				continue
			}

			if err := dao.UpdateSessionTitle(task.SessionID, title); err != nil {
				slog.Error("Failed to update session title",
					"session_id", task.SessionID,
					"err", err,
				)
			}
		}
	}
}

func (r *Refiner) generateTitle(ctx context.Context, question string) (string, error) {
	tmpl, err := template.New("prompt").Parse(titlePrompt)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %v", err)
	}

	var buf bytes.Buffer
	data := struct {
		Question string
	}{
		Question: question,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %v", err)
	}

	// 标题模型可独立于会话模型配置，留空则复用当前路由模型
	resp, err := r.router.GenerateWithModel(ctx, config.Cfg.Titles.Model, titleSystemPrompt, buf.String(), titleTemperature, titleMaxTokens)
	if err != nil {
		return "", fmt.Errorf("llm call error: %w", err)
	}

	return sanitizeTitle(resp.Content), nil
}

func sanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"'“”`)
	title = strings.Join(strings.Fields(title), " ")

	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}
	return title
}
