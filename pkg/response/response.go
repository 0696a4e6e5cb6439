package response

import (
	"errors"
	"net/http"

	"walletsystem/pkg/errcode"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess     = 0
	CodeParamError  = 400
	CodeServerError = 500
)

// 业务错误码到响应码的映射
var bizCodes = map[errcode.Code]int{
	errcode.AuthRequired:        1001,
	errcode.InvalidUserID:       1002,
	errcode.InvalidRequest:      1003,
	errcode.Unauthorized:        1004,
	errcode.InsufficientBalance: 1005,
	errcode.WalletBusy:          1006,
	errcode.InternalError:       1007,
}

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func ParamError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    CodeParamError,
		Message: message,
	})
}

func ServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code:    CodeServerError,
		Message: message,
	})
}

// BizError 输出业务错误
//
// HTTP 状态码跟随错误码（参数错 400、越权 403、锁繁忙 409 等），
// 非业务错误一律按服务器内部错误处理，不向客户端透出细节
func BizError(c *gin.Context, err error) {
	var bizErr *errcode.BusinessError
	if !errors.As(err, &bizErr) {
		bizErr = errcode.New(errcode.InternalError)
	}

	code, ok := bizCodes[bizErr.Code]
	if !ok {
		code = CodeServerError
	}

	c.JSON(bizErr.HTTPStatus(), Response{
		Code:    code,
		Message: bizErr.Message,
	})
}
