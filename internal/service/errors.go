package service

import "errors"

// Ошибки сервисного слоя. Handlers переводят их в прикладные коды 9xxx.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("数据未找到")
	// ErrConflict — запись с таким кодом или парой action/resource уже есть.
	ErrConflict = errors.New("资源已存在")
	// ErrInvalidParameter — некорректные входные данные.
	ErrInvalidParameter = errors.New("请求参数错误")
	// ErrEmailExists — email уже зарегистрирован.
	ErrEmailExists = errors.New("邮箱已存在")
	// ErrInvalidCode — неверный или просроченный код подтверждения.
	ErrInvalidCode = errors.New("验证码无效")
	// ErrInvalidCredentials — неверный email или пароль.
	ErrInvalidCredentials = errors.New("登录凭据无效")
	// ErrKeyExpired — ключ шифрования не найден или истёк.
	ErrKeyExpired = errors.New("密钥过期")
	// ErrDecryption — пароль не расшифровывается ключом.
	ErrDecryption = errors.New("解密失败")
	// ErrAccountDisabled — учётная запись выключена.
	ErrAccountDisabled = errors.New("账户已禁用")
	// ErrSystemRole — операция запрещена для системной роли.
	ErrSystemRole = errors.New("系统角色不可删除")
	// ErrForbidden — действие над чужой учётной записью.
	ErrForbidden = errors.New("权限不足")
	// ErrInvalidToken — токен не прошёл проверку или отозван.
	ErrInvalidToken = errors.New("token无效或已过期")
)
