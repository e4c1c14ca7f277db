package config

type Config struct {
	Auth      AuthConf      `json:"auth"`
	Feed      FeedConf      `json:"feed"`
	Dashboard DashboardConf `json:"dashboard"`
	Backtest  BacktestConf  `json:"backtest"`
	Telegram  TelegramConf  `json:"telegram"`
}

type AuthConf struct {
	JWTSecret string `json:"jwt_secret"` // 为空时每次启动随机生成，重启后所有会话失效
}

type FeedConf struct {
	Endpoint   string `json:"endpoint"`    // 上游变更通知websocket地址
	PageSize   int    `json:"page_size"`   // 启动装载分页大小，默认1000
	MaxRecords int    `json:"max_records"` // 账本装载上限，默认50000
	ResyncCron string `json:"resync_cron"` // 定时全量对账，默认每小时
}

type DashboardConf struct {
	TopChannels    int `json:"top_channels"`    // 排行榜条数，默认5
	HotMinSignals  int `json:"hot_min_signals"` // 热度榜最小信号量，默认1
	RollingWindow  int `json:"rolling_window"`  // 滚动胜率窗口，默认20
	RecentActivity int `json:"recent_activity"` // 审计事件展示条数，默认50
	MaxTradeRows   int `json:"max_trade_rows"`  // 明细表单次返回上限，默认500
}

type BacktestConf struct {
	Endpoint       string `json:"endpoint"`        // 回测服务地址
	TimeoutSeconds int    `json:"timeout_seconds"` // 请求超时，默认300
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

// 缺省值，配置文件没写时生效
const (
	DefaultPageSize       = 1000
	DefaultMaxRecords     = 50000
	DefaultResyncCron     = "0 * * * *"
	DefaultTopChannels    = 5
	DefaultHotMinSignals  = 1
	DefaultRollingWindow  = 20
	DefaultRecentActivity = 50
	DefaultMaxTradeRows   = 500
	DefaultTimeoutSeconds = 300
)

// Normalize 填充缺省值
func (c *Config) Normalize() {
	if c.Feed.PageSize <= 0 {
		c.Feed.PageSize = DefaultPageSize
	}
	if c.Feed.MaxRecords <= 0 {
		c.Feed.MaxRecords = DefaultMaxRecords
	}
	if c.Feed.ResyncCron == "" {
		c.Feed.ResyncCron = DefaultResyncCron
	}
	if c.Dashboard.TopChannels <= 0 {
		c.Dashboard.TopChannels = DefaultTopChannels
	}
	if c.Dashboard.HotMinSignals <= 0 {
		c.Dashboard.HotMinSignals = DefaultHotMinSignals
	}
	if c.Dashboard.RollingWindow <= 0 {
		c.Dashboard.RollingWindow = DefaultRollingWindow
	}
	if c.Dashboard.RecentActivity <= 0 {
		c.Dashboard.RecentActivity = DefaultRecentActivity
	}
	if c.Dashboard.MaxTradeRows <= 0 {
		c.Dashboard.MaxTradeRows = DefaultMaxTradeRows
	}
	if c.Backtest.TimeoutSeconds <= 0 {
		c.Backtest.TimeoutSeconds = DefaultTimeoutSeconds
	}
}
