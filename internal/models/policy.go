package models

// 策略类型，kind 字段决定哪组参数生效
const (
	TPPolicyRR      = "rr"       // 按风险回报比
	TPPolicyIndex   = "tp_index" // 按第N个止盈位
	PolicyPips      = "pips"
	PolicyPath      = "%path" // 按入场到止盈路径百分比
	CancelByFinalTP = "final_tp"
)

// FinalTPPolicy 最终止盈策略
type FinalTPPolicy struct {
	Kind    string  `json:"kind"`               // rr / tp_index
	TPIndex int     `json:"tp_index,omitempty"` // kind=tp_index 时生效
	RRRatio float64 `json:"rr_ratio,omitempty"` // kind=rr 时生效
}

// RiskFreePolicy 保本（移动止损到入场价）策略
type RiskFreePolicy struct {
	Enabled bool    `json:"enabled"`
	Kind    string  `json:"kind"` // tp_index / pips / %path
	TPIndex int     `json:"tp_index,omitempty"`
	Pips    float64 `json:"pips,omitempty"`
	Percent float64 `json:"percent,omitempty"`
}

// CancelPolicy 挂单撤销策略
type CancelPolicy struct {
	Enabled  bool    `json:"enabled"`
	Kind     string  `json:"kind"` // final_tp / tp_index / %path
	TPIndex  int     `json:"tp_index,omitempty"`
	Percent  float64 `json:"percent,omitempty"`
	ForNow   bool    `json:"enable_for_now"`
	ForLimit bool    `json:"enable_for_limit"`
	ForAuto  bool    `json:"enable_for_auto"`
}

// Instrument 品种映射
type Instrument struct {
	Logical      string  `json:"logical"`       // 逻辑品种名
	BrokerSymbol string  `json:"broker_symbol"` // 券商品种名
	PipTolerance float64 `json:"pip_tolerance_pips"`
}
