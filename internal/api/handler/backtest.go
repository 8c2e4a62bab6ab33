// internal/api/handler/backtest.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rsinha/backfolio/internal/api/job"
	"github.com/rsinha/backfolio/internal/api/response"
	"github.com/rsinha/backfolio/internal/archive"
	"github.com/rsinha/backfolio/internal/core"
	"github.com/rsinha/backfolio/internal/engine"
	"github.com/rsinha/backfolio/internal/export"
	"github.com/rsinha/backfolio/internal/metrics"
)

const (
	backtestTimeout = 5 * time.Minute

	// responseLogRows is how many trailing transaction-log rows the JSON
	// response carries; the full log goes out through the exporter.
	responseLogRows = 5

	// defaultMarketCapMax bounds the screen when the caller leaves the
	// upper market-cap filter unset.
	defaultMarketCapMax = 1e15
)

// Runner executes one backtest request.
type Runner interface {
	Run(ctx context.Context, req engine.Request) (*engine.Report, error)
}

// BacktestRequest is the request body for a backtest.
type BacktestRequest struct {
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	Frequency     string  `json:"frequency"`
	PortfolioSize int     `json:"portfolioSize"`
	Capital       float64 `json:"capital"`
	MarketCapMin  float64 `json:"marketCapMin"`
	MarketCapMax  float64 `json:"marketCapMax"`
	ROCE          float64 `json:"roce"`
	PAT           bool    `json:"pat"`
	RankingLogic  string  `json:"rankingLogic"`
	SizingMethod  string  `json:"sizingMethod"`
}

// BacktestResponse is the JSON body returned for a completed backtest.
type BacktestResponse struct {
	Metrics     engine.Metrics         `json:"metrics"`
	Winners     []engine.SymbolReturn  `json:"winners"`
	Losers      []engine.SymbolReturn  `json:"losers"`
	EquityCurve []engine.EquityPoint   `json:"equityCurve"`
	Drawdown    []engine.DrawdownPoint `json:"drawdown"`
	Logs        []engine.LogRow        `json:"logs"`
}

// BacktestHandler serves synchronous and job-based backtest requests.
type BacktestHandler struct {
	runner   Runner
	jobs     *job.Store
	artifact archive.Store
	registry *metrics.Registry
	logger   *zap.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(
	runner Runner,
	jobs *job.Store,
	artifact archive.Store,
	registry *metrics.Registry,
	logger *zap.Logger,
) *BacktestHandler {
	return &BacktestHandler{
		runner:   runner,
		jobs:     jobs,
		artifact: artifact,
		registry: registry,
		logger:   logger,
	}
}

// Run handles POST /backtest: runs the backtest synchronously and returns
// the full report.
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.ErrorBody{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), backtestTimeout)
	defer cancel()

	start := time.Now()
	report, err := h.runner.Run(ctx, req)
	duration := time.Since(start).Seconds()

	if err != nil {
		h.registry.RecordBacktest("error", duration)
		h.logger.Warn("backtest failed", zap.Error(err))
		response.Error(w, err)
		return
	}
	h.registry.RecordBacktest("success", duration)

	h.exportArtifacts(ctx, report.Logs)

	response.JSON(w, http.StatusOK, buildResponse(report))
}

// Create handles POST /api/backtest: starts a background job.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.ErrorBody{Error: err.Error()})
		return
	}

	j := h.jobs.Create()
	h.registry.SetJobsActive(h.jobs.Len())

	// Copy values before starting goroutine to avoid race
	jobID := j.ID
	status := j.Status

	go h.runJob(jobID, req)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"jobId":  jobID,
		"status": status,
	})
}

// runJob executes the backtest and updates job status.
func (h *BacktestHandler) runJob(jobID string, req engine.Request) {
	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()

	start := time.Now()
	report, err := h.runner.Run(ctx, req)
	duration := time.Since(start).Seconds()

	if err != nil {
		h.registry.RecordBacktest("error", duration)
		message := "an internal error occurred"
		var coreErr *core.Error
		if errors.As(err, &coreErr) {
			message = coreErr.Message
		}
		h.logger.Warn("backtest job failed", zap.String("job", jobID), zap.Error(err))
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = message
		})
		return
	}
	h.registry.RecordBacktest("success", duration)

	h.exportArtifacts(ctx, report.Logs)

	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = buildResponse(report)
	})
}

// GetStatus handles GET /api/backtest/{id}.
func (h *BacktestHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

// exportArtifacts renders the transaction log and persists both artifact
// formats. Export failures never fail the backtest itself.
func (h *BacktestHandler) exportArtifacts(ctx context.Context, rows []engine.LogRow) {
	if csvData, err := export.CSV(rows); err != nil {
		h.logger.Warn("rendering csv artifact", zap.Error(err))
	} else if err := h.artifact.Write(ctx, export.CSVArtifact, csvData); err != nil {
		h.logger.Warn("storing csv artifact", zap.Error(err))
	}

	if xlsxData, err := export.XLSX(rows); err != nil {
		h.logger.Warn("rendering xlsx artifact", zap.Error(err))
	} else if err := h.artifact.Write(ctx, export.XLSXArtifact, xlsxData); err != nil {
		h.logger.Warn("storing xlsx artifact", zap.Error(err))
	}
}

func decodeRequest(r *http.Request) (engine.Request, error) {
	var body BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return engine.Request{}, errors.New("invalid request body")
	}
	return body.toEngineRequest()
}

func (b BacktestRequest) toEngineRequest() (engine.Request, error) {
	start, err := time.Parse("2006-01-02", b.StartDate)
	if err != nil {
		return engine.Request{}, errors.New("startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", b.EndDate)
	if err != nil {
		return engine.Request{}, errors.New("endDate must be YYYY-MM-DD")
	}

	capMax := b.MarketCapMax
	if capMax == 0 {
		capMax = defaultMarketCapMax
	}

	return engine.Request{
		StartDate:          start,
		EndDate:            end,
		Frequency:          core.Frequency(b.Frequency),
		PortfolioSize:      b.PortfolioSize,
		Capital:            b.Capital,
		MarketCapMin:       b.MarketCapMin,
		MarketCapMax:       capMax,
		ROCEMin:            b.ROCE,
		RequirePositivePAT: b.PAT,
		RankingLogic:       b.RankingLogic,
		SizingMethod:       core.SizingMethod(b.SizingMethod),
	}, nil
}

func buildResponse(report *engine.Report) BacktestResponse {
	logs := report.Logs
	if len(logs) > responseLogRows {
		logs = logs[len(logs)-responseLogRows:]
	}
	return BacktestResponse{
		Metrics:     report.Metrics,
		Winners:     report.Winners,
		Losers:      report.Losers,
		EquityCurve: report.EquityCurve,
		Drawdown:    report.Drawdown,
		Logs:        logs,
	}
}
