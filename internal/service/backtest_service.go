package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dushixiang/lumen/internal/config"
	"github.com/dushixiang/lumen/internal/models"
	"github.com/dushixiang/lumen/internal/repo"
	"github.com/dushixiang/lumen/internal/xe"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BacktestService 回测请求代理。回测本身由独立服务执行，
// 这里负责组装频道配置与策略覆盖，并限制同时只有一个任务。
type BacktestService struct {
	logger *zap.Logger
	conf   config.BacktestConf

	channelRepo *repo.ChannelRepo
	client      *http.Client

	running atomic.Bool
}

// NewBacktestService 创建回测服务
func NewBacktestService(db *gorm.DB, conf *config.Config, logger *zap.Logger) *BacktestService {
	return &BacktestService{
		logger:      logger,
		conf:        conf.Backtest,
		channelRepo: repo.NewChannelRepo(db),
		client: &http.Client{
			Timeout: time.Duration(conf.Backtest.TimeoutSeconds) * time.Second,
		},
	}
}

// BacktestRequest 回测请求，策略字段为空时沿用频道当前配置
type BacktestRequest struct {
	ChannelID string `json:"channel_id" validate:"required"`
	From      string `json:"from" validate:"required"` // 2006-01-02
	To        string `json:"to" validate:"required"`

	FinalTPPolicy  *models.FinalTPPolicy  `json:"final_tp_policy"`
	RiskFreePolicy *models.RiskFreePolicy `json:"riskfree_policy"`
	CancelPolicy   *models.CancelPolicy   `json:"cancel_policy"`
	RiskPerTrade   float64                `json:"risk_per_trade"`
}

// backtestPayload 发给回测服务的请求体
type backtestPayload struct {
	ChannelKey     string                `json:"channel_key"`
	From           string                `json:"from"`
	To             string                `json:"to"`
	RiskPerTrade   float64               `json:"risk_per_trade"`
	FinalTPPolicy  models.FinalTPPolicy  `json:"final_tp_policy"`
	RiskFreePolicy models.RiskFreePolicy `json:"riskfree_policy"`
	CancelPolicy   models.CancelPolicy   `json:"cancel_policy"`
	Instruments    []models.Instrument   `json:"instruments"`
}

// BacktestTrade 回测明细行。Outcome 是模拟结果，
// OriginalOutcome 保留实盘结果，前端逐行对照展示
type BacktestTrade struct {
	Symbol          string    `json:"symbol"`
	Side            string    `json:"side"`
	Outcome         string    `json:"outcome"`
	OriginalOutcome string    `json:"original_outcome"`
	ProfitLoss      float64   `json:"profit_loss"`
	Pips            float64   `json:"pips"`
	RiskReward      float64   `json:"risk_reward"`
	OpenTime        time.Time `json:"open_time"`
	CloseTime       time.Time `json:"close_time"`
}

// BacktestResult 回测结果
type BacktestResult struct {
	ChannelName   string          `json:"channel_name"`
	TotalTrades   int             `json:"total_trades"`
	Wins          int             `json:"wins"`
	Losses        int             `json:"losses"`
	Breakevens    int             `json:"breakevens"`
	WinRate       float64         `json:"win_rate"`
	NetProfit     float64         `json:"net_profit"`
	TotalPips     float64         `json:"total_pips"`
	AvgPips       float64         `json:"avg_pips"`
	AvgRiskReward float64         `json:"avg_risk_reward"`
	MaxDrawdown   float64         `json:"max_drawdown"`
	Trades        []BacktestTrade `json:"trades"`
}

// Run 执行一次回测。同一时间只允许一个任务，
// 回测服务是单实例的，排队不如直接拒绝。
func (s *BacktestService) Run(ctx context.Context, req BacktestRequest) (*BacktestResult, error) {
	if s.conf.Endpoint == "" {
		return nil, xe.ErrBacktestUnavailable
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, xe.ErrBacktestRunning
	}
	defer s.running.Store(false)

	channel, err := s.channelRepo.FindById(ctx, req.ChannelID)
	if err != nil {
		return nil, xe.ErrChannelNotFound
	}

	payload := backtestPayload{
		ChannelKey:     channel.ChannelKey,
		From:           req.From,
		To:             req.To,
		RiskPerTrade:   channel.RiskPerTrade,
		FinalTPPolicy:  channel.FinalTPPolicy.Data(),
		RiskFreePolicy: channel.RiskFreePolicy.Data(),
		CancelPolicy:   channel.CancelPolicy.Data(),
		Instruments:    channel.Instruments,
	}
	// 策略覆盖：前端可以在不改频道配置的情况下试跑参数
	if req.RiskPerTrade > 0 {
		payload.RiskPerTrade = req.RiskPerTrade
	}
	if req.FinalTPPolicy != nil {
		payload.FinalTPPolicy = *req.FinalTPPolicy
	}
	if req.RiskFreePolicy != nil {
		payload.RiskFreePolicy = *req.RiskFreePolicy
	}
	if req.CancelPolicy != nil {
		payload.CancelPolicy = *req.CancelPolicy
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.conf.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	s.logger.Info("backtest started",
		zap.String("channel", channel.ChannelName),
		zap.String("from", req.From),
		zap.String("to", req.To))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Error("backtest request failed", zap.Error(err))
		return nil, xe.ErrBacktestUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("backtest service returned error",
			zap.Int("status", resp.StatusCode))
		return nil, xe.ErrBacktestUnavailable
	}

	var result BacktestResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode backtest result: %w", err)
	}
	result.ChannelName = channel.ChannelName

	// 远端只给明细时本地补算汇总
	if result.TotalTrades == 0 && len(result.Trades) > 0 {
		s.summarize(&result)
	}

	s.logger.Info("backtest finished",
		zap.String("channel", channel.ChannelName),
		zap.Int("trades", result.TotalTrades),
		zap.Float64("net_profit", result.NetProfit))
	return &result, nil
}

// Running 是否有回测任务在执行
func (s *BacktestService) Running() bool {
	return s.running.Load()
}

func (s *BacktestService) summarize(result *BacktestResult) {
	result.TotalTrades = len(result.Trades)
	var net, pips, peak, equity, maxDrawdown float64
	var rrSum float64
	var rrCount int
	for _, t := range result.Trades {
		net += t.ProfitLoss
		pips += t.Pips
		equity += t.ProfitLoss
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > maxDrawdown {
			maxDrawdown = dd
		}
		if t.RiskReward != 0 {
			rrSum += t.RiskReward
			rrCount++
		}
		switch t.Outcome {
		case models.OutcomeProfit:
			result.Wins++
		case models.OutcomeLoss:
			result.Losses++
		case models.OutcomeBreakeven:
			result.Breakevens++
		}
	}
	result.NetProfit = net
	result.TotalPips = pips
	result.MaxDrawdown = maxDrawdown
	if result.TotalTrades > 0 {
		result.AvgPips = pips / float64(result.TotalTrades)
	}
	if rrCount > 0 {
		result.AvgRiskReward = rrSum / float64(rrCount)
	}
	if denom := result.Wins + result.Losses; denom > 0 {
		result.WinRate = float64(result.Wins) / float64(denom)
	}
}
