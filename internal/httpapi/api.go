package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuqie6/growthlog/internal/eventbus"
	"github.com/yuqie6/growthlog/internal/pkg/config"
	"github.com/yuqie6/growthlog/internal/service"
)

// ========== DTOs（与前端契约保持稳定） ==========

type SettingsDTO struct {
	ConfigPath string `json:"config_path"`

	Timezone    string `json:"timezone"`
	DefaultUser string `json:"default_user"`
	ListenAddr  string `json:"listen_addr"`

	GitHubUsername string `json:"github_username"`
	GitHubTokenSet bool   `json:"github_token_set"`

	DeepSeekAPIKeySet bool   `json:"deepseek_api_key_set"`
	DeepSeekBaseURL   string `json:"deepseek_base_url"`
	DeepSeekModel     string `json:"deepseek_model"`

	SiliconFlowAPIKeySet      bool   `json:"siliconflow_api_key_set"`
	SiliconFlowBaseURL        string `json:"siliconflow_base_url"`
	SiliconFlowEmbeddingModel string `json:"siliconflow_embedding_model"`

	DBPath     string `json:"db_path"`
	MemoryPath string `json:"memory_path"`
}

type SaveSettingsRequestDTO struct {
	Timezone    *string `json:"timezone"`
	DefaultUser *string `json:"default_user"`

	GitHubUsername *string `json:"github_username"`
	GitHubToken    *string `json:"github_token"`

	DeepSeekAPIKey  *string `json:"deepseek_api_key"`
	DeepSeekBaseURL *string `json:"deepseek_base_url"`
	DeepSeekModel   *string `json:"deepseek_model"`

	SiliconFlowAPIKey         *string `json:"siliconflow_api_key"`
	SiliconFlowBaseURL        *string `json:"siliconflow_base_url"`
	SiliconFlowEmbeddingModel *string `json:"siliconflow_embedding_model"`

	DBPath     *string `json:"db_path"`
	MemoryPath *string `json:"memory_path"`
}

type SaveSettingsResponseDTO struct {
	RestartRequired bool `json:"restart_required"`
}

type GitHubTestResponseDTO struct {
	OK        bool   `json:"ok"`
	Login     string `json:"login,omitempty"`
	Limit     int    `json:"rate_limit"`
	Remaining int    `json:"rate_remaining"`
	Error     string `json:"error,omitempty"`
}

// ========== routes ==========

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/reports", a.createReport)
	mux.HandleFunc("GET /api/reports", a.listReports)
	mux.HandleFunc("GET /api/reports/{id}", a.getReport)
	mux.HandleFunc("PUT /api/reports/{id}", a.updateReport)
	mux.HandleFunc("DELETE /api/reports/{id}", a.deleteReport)

	mux.HandleFunc("GET /api/github/daily-stats", a.getDailyStats)
	mux.HandleFunc("GET /api/github/test", a.testGitHub)

	mux.HandleFunc("GET /api/growth", a.getGrowth)
	mux.HandleFunc("GET /api/weekly", a.getWeekly)

	mux.HandleFunc("GET /api/settings", a.getSettings)
	mux.HandleFunc("PUT /api/settings", a.saveSettings)
}

// ========== handlers ==========

func (a *apiServer) createReport(w http.ResponseWriter, r *http.Request) {
	var input service.CreateReportInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	report, err := a.svc.Reports.CreateReport(ctx, a.userID(r), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (a *apiServer) listReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reports, err := a.svc.Reports.ListReports(ctx, a.userID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (a *apiServer) getReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	report, err := a.svc.Reports.GetReport(ctx, r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *apiServer) updateReport(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateReportInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	report, err := a.svc.Reports.UpdateReport(ctx, r.PathValue("id"), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *apiServer) deleteReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := a.svc.Reports.DeleteReport(ctx, r.PathValue("id")); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// getDailyStats 抓取指定日期的 GitHub 活动（落库前预览）
func (a *apiServer) getDailyStats(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = service.DateKey(time.Now(), a.cfg.Location())
	}

	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	activity, err := a.svc.Reports.ComposeDailyActivity(ctx, a.userID(r), a.cfg.GitHub.Username, date)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// testGitHub 连接测试：验证 Token 并返回速率限制
func (a *apiServer) testGitHub(w http.ResponseWriter, r *http.Request) {
	if a.gh == nil || !a.gh.IsConfigured() {
		writeJSON(w, http.StatusOK, &GitHubTestResponseDTO{OK: false, Error: "GitHub Token 未配置"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	login, err := a.gh.GetAuthenticatedUser(ctx)
	if err != nil {
		writeJSON(w, http.StatusOK, &GitHubTestResponseDTO{OK: false, Error: err.Error()})
		return
	}

	resp := &GitHubTestResponseDTO{OK: true, Login: login}
	if limit, err := a.gh.GetRateLimit(ctx); err == nil {
		resp.Limit = limit.Limit
		resp.Remaining = limit.Remaining
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *apiServer) getGrowth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	data, err := a.svc.Growth.GetGrowthData(ctx, a.userID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (a *apiServer) getWeekly(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if s := strings.TrimSpace(r.URL.Query().Get("offset")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "offset 必须为整数")
			return
		}
		offset = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats, err := a.svc.Weekly.GetWeeklyStats(ctx, a.userID(r), offset)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *apiServer) getSettings(w http.ResponseWriter, r *http.Request) {
	path, err := config.DefaultConfigPath()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cfg, err := config.Load(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, &SettingsDTO{
		ConfigPath: path,

		Timezone:    cfg.App.Timezone,
		DefaultUser: cfg.App.DefaultUser,
		ListenAddr:  cfg.Server.ListenAddr,

		GitHubUsername: cfg.GitHub.Username,
		GitHubTokenSet: cfg.GitHub.Token != "",

		DeepSeekAPIKeySet: cfg.AI.DeepSeek.APIKey != "",
		DeepSeekBaseURL:   cfg.AI.DeepSeek.BaseURL,
		DeepSeekModel:     cfg.AI.DeepSeek.Model,

		SiliconFlowAPIKeySet:      cfg.AI.SiliconFlow.APIKey != "",
		SiliconFlowBaseURL:        cfg.AI.SiliconFlow.BaseURL,
		SiliconFlowEmbeddingModel: cfg.AI.SiliconFlow.EmbeddingModel,

		DBPath:     cfg.Storage.DBPath,
		MemoryPath: cfg.Storage.MemoryPath,
	})
}

func (a *apiServer) saveSettings(w http.ResponseWriter, r *http.Request) {
	var req SaveSettingsRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := config.DefaultConfigPath()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cur, err := config.Load(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	next := *cur

	if req.Timezone != nil {
		next.App.Timezone = *req.Timezone
	}
	if req.DefaultUser != nil {
		next.App.DefaultUser = *req.DefaultUser
	}

	if req.GitHubUsername != nil {
		next.GitHub.Username = *req.GitHubUsername
	}
	if req.GitHubToken != nil {
		next.GitHub.Token = *req.GitHubToken
	}

	if req.DeepSeekAPIKey != nil {
		next.AI.DeepSeek.APIKey = *req.DeepSeekAPIKey
	}
	if req.DeepSeekBaseURL != nil {
		next.AI.DeepSeek.BaseURL = *req.DeepSeekBaseURL
	}
	if req.DeepSeekModel != nil {
		next.AI.DeepSeek.Model = *req.DeepSeekModel
	}

	if req.SiliconFlowAPIKey != nil {
		next.AI.SiliconFlow.APIKey = *req.SiliconFlowAPIKey
	}
	if req.SiliconFlowBaseURL != nil {
		next.AI.SiliconFlow.BaseURL = *req.SiliconFlowBaseURL
	}
	if req.SiliconFlowEmbeddingModel != nil {
		next.AI.SiliconFlow.EmbeddingModel = *req.SiliconFlowEmbeddingModel
	}

	if req.DBPath != nil {
		next.Storage.DBPath = *req.DBPath
	}
	if req.MemoryPath != nil {
		next.Storage.MemoryPath = *req.MemoryPath
	}

	if err := config.WriteFile(path, &next); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	a.hub.Publish(eventbus.Event{Type: "settings_updated"})
	writeJSON(w, http.StatusOK, &SaveSettingsResponseDTO{RestartRequired: true})
}
