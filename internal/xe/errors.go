package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams    = orz.NewError(10400, "参数无效")
	ErrInvalidToken     = orz.NewError(10403, "令牌无效")
	ErrPermissionDenied = orz.NewError(10401, "您没有权限查看/修改/删除此数据")

	ErrIncorrectPassword = orz.NewError(10001, "账户或密码错误")
	ErrSetupCompleted    = orz.NewError(10002, "系统已完成初始化")

	ErrChannelNotFound  = orz.NewError(10010, "频道不存在")
	ErrChannelKeyExists = orz.NewError(10011, "频道标识已存在")

	ErrBacktestRunning     = orz.NewError(10020, "已有回测任务在执行中")
	ErrBacktestUnavailable = orz.NewError(10021, "回测服务不可用")
)
