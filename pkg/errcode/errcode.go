package errcode

import "net/http"

// ============================================================================
// 业务错误码
// ============================================================================
//
// 【设计要点】错误码是字符串枚举，而不是数字
//
// 提现失败时，错误码会作为 failure_reason 落到 transactions 表里。
// 客户端用相同的 transaction_id 重试时，需要从存储的字符串还原出
// 同样的错误，原样重放给调用方。字符串枚举可读、可落库、可还原，
// 数字编号做不到第三点（新老版本对不上号）。
//
// ============================================================================

// Code 业务错误码，落库时直接存储其字符串值
type Code string

const (
	AuthRequired        Code = "AUTH_REQUIRED"        // 缺少 User-Id 请求头
	InvalidUserID       Code = "INVALID_USER_ID"      // User-Id 不是正整数
	InvalidRequest      Code = "INVALID_REQUEST"      // 请求参数不合法（如金额 <= 0）
	Unauthorized        Code = "UNAUTHORIZED"         // 钱包不存在或不属于当前用户（两者不区分）
	InsufficientBalance Code = "INSUFFICIENT_BALANCE" // 余额不足
	WalletBusy          Code = "WALLET_BUSY"          // 锁等待超时，钱包操作繁忙
	InternalError       Code = "INTERNAL_ERROR"       // 其他存储或一致性异常
)

var messages = map[Code]string{
	AuthRequired:        "请先登录",
	InvalidUserID:       "User-Id 不合法",
	InvalidRequest:      "请求参数不合法",
	Unauthorized:        "无权限操作该钱包",
	InsufficientBalance: "余额不足",
	WalletBusy:          "钱包操作繁忙，请稍后重试",
	InternalError:       "服务器内部错误",
}

var httpStatuses = map[Code]int{
	AuthRequired:        http.StatusUnauthorized,
	InvalidUserID:       http.StatusBadRequest,
	InvalidRequest:      http.StatusBadRequest,
	Unauthorized:        http.StatusForbidden,
	InsufficientBalance: http.StatusBadRequest,
	WalletBusy:          http.StatusConflict,
	InternalError:       http.StatusInternalServerError,
}

// BusinessError 业务错误，携带稳定的错误码
type BusinessError struct {
	Code    Code
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// New 根据错误码创建业务错误
func New(code Code) *BusinessError {
	msg, ok := messages[code]
	if !ok {
		msg = messages[InternalError]
	}
	return &BusinessError{Code: code, Message: msg}
}

// HTTPStatus 错误码对应的 HTTP 状态码
func (e *BusinessError) HTTPStatus() int {
	if status, ok := httpStatuses[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromStored 将落库的 failure_reason 还原为错误码
//
// 【关键点】新版本可能写入老版本不认识的错误码，
// 不认识的一律按 INTERNAL_ERROR 处理，保证向前兼容
func FromStored(reason string) Code {
	code := Code(reason)
	if _, ok := messages[code]; ok {
		return code
	}
	return InternalError
}
