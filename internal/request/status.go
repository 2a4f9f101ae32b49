package request

// Status — класс транспортного статуса ответа.
// Значения 2xx-5xx совпадают с кодами HTTP, синтетические классы лежат в 9xxx.
type Status int

// Классы транспортных статусов.
const (
	StatusOK                  Status = 200
	StatusRedirection         Status = 300
	StatusBadRequest          Status = 400
	StatusUnauthorized        Status = 401
	StatusForbidden           Status = 403
	StatusNotFound            Status = 404
	StatusInternalServerError Status = 500
	StatusOKOther             Status = 9200
	StatusUnknown             Status = 9300
	StatusClientError         Status = 9400
	StatusServerError         Status = 9500
)

var statusMessages = map[Status]string{
	StatusBadRequest:          "参数错误",
	StatusUnauthorized:        "未授权",
	StatusForbidden:           "禁止访问",
	StatusNotFound:            "请求不存在",
	StatusInternalServerError: "服务器错误",
	StatusClientError:         "客户端错误",
	StatusServerError:         "服务器错误",
	StatusUnknown:             "未知错误",
}

// Classify раскладывает HTTP-код по классам.
func Classify(code int) Status {
	switch {
	case code == 200:
		return StatusOK
	case code > 200 && code < 300:
		return StatusOKOther
	case code >= 300 && code < 400:
		return StatusRedirection
	case code >= 400 && code < 500:
		switch Status(code) {
		case StatusBadRequest, StatusUnauthorized, StatusForbidden, StatusNotFound:
			return Status(code)
		default:
			return StatusClientError
		}
	case code == 500:
		return StatusInternalServerError
	case code > 500 && code < 600:
		return StatusServerError
	default:
		return StatusUnknown
	}
}

// Success сообщает, передаётся ли ответ дальше на разбор конверта.
func (s Status) Success() bool {
	return s == StatusOK || s == StatusOKOther || s == StatusRedirection
}

// Message возвращает текст для класса; для успешных классов — пустая строка.
func (s Status) Message() string {
	if s.Success() {
		return ""
	}
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return statusMessages[StatusUnknown]
}

// BusinessCode — прикладной код ошибки внутри успешного HTTP-ответа.
type BusinessCode int

// Прикладные коды ошибок API.
const (
	CodeMissingToken            BusinessCode = 9000
	CodeInvalidParameter        BusinessCode = 9001
	CodeDataNotFound            BusinessCode = 9002
	CodeInsufficientPermission  BusinessCode = 9003
	CodeEmailExists             BusinessCode = 9004
	CodeInvalidVerificationCode BusinessCode = 9005
	CodeInvalidCredentials      BusinessCode = 9006
	CodeResourceExists          BusinessCode = 9007
	CodeOperationFailed         BusinessCode = 9008
	CodeServiceUnavailable      BusinessCode = 9009
	CodeKeyExpired              BusinessCode = 9010
	CodeDecryptionFailed        BusinessCode = 9011
	CodeBusinessRuleViolation   BusinessCode = 9012
	CodeAccountDisabled         BusinessCode = 9013
)

var businessMessages = map[BusinessCode]string{
	CodeMissingToken:            "缺少token",
	CodeInvalidParameter:        "请求参数错误",
	CodeDataNotFound:            "数据未找到",
	CodeInsufficientPermission:  "权限不足",
	CodeEmailExists:             "邮箱已存在",
	CodeInvalidVerificationCode: "验证码无效",
	CodeInvalidCredentials:      "登录凭据无效",
	CodeResourceExists:          "资源已存在",
	CodeOperationFailed:         "操作失败",
	CodeServiceUnavailable:      "服务不可用",
	CodeKeyExpired:              "密钥过期",
	CodeDecryptionFailed:        "解密失败",
	CodeBusinessRuleViolation:   "业务规则限制",
	CodeAccountDisabled:         "账户已禁用",
}

// Message возвращает текст кода или пустую строку для неизвестного кода.
func (c BusinessCode) Message() string {
	return businessMessages[c]
}

// IsFailure — встроенный statusCode в диапазоне ошибок.
func (c BusinessCode) IsFailure() bool {
	return c >= BusinessCode(StatusRedirection)
}
