package apperror

import "errors"

// Kind 定义了业务错误的分类枚举。
// 调用方（HTTP层）只依赖Kind来决定对外的响应，绝不透传存储层的错误文本。
type Kind int

const (
	// KindInternal 表示未预期的内部错误，对外只返回通用提示
	KindInternal Kind = iota
	// KindValidation 表示输入格式或长度非法，客户端可修正后重试
	KindValidation
	// KindNotFound 表示引用的频道或管理员不存在
	KindNotFound
	// KindDuplicateVote 表示同一访客对同一频道重复提交了相同的投票
	KindDuplicateVote
	// KindInvalidCredentials 表示用户名或密码错误（两者刻意不可区分）
	KindInvalidCredentials
	// KindUnauthenticated 表示会话令牌缺失、未知或已过期
	KindUnauthenticated
	// KindAdminAlreadyExists 表示首个管理员已存在，引导流程被拒绝
	KindAdminAlreadyExists
	// KindTransient 表示存储暂时不可用或超时，可以安全退避重试
	KindTransient
)

// Error 是携带分类的业务错误。
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Unwrap 暴露底层错误，保持与 errors.Is / errors.As 的兼容。
func (e *Error) Unwrap() error {
	return e.err
}

// New 创建一个指定分类的业务错误。
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap 在保留底层错误的同时附加分类和说明。
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// Validation 等一组构造函数是各分类的快捷方式。
func Validation(msg string) *Error         { return New(KindValidation, msg) }
func NotFound(msg string) *Error           { return New(KindNotFound, msg) }
func DuplicateVote(msg string) *Error      { return New(KindDuplicateVote, msg) }
func InvalidCredentials(msg string) *Error { return New(KindInvalidCredentials, msg) }
func Unauthenticated(msg string) *Error    { return New(KindUnauthenticated, msg) }
func AdminAlreadyExists(msg string) *Error { return New(KindAdminAlreadyExists, msg) }
func Transient(msg string, err error) *Error {
	return Wrap(KindTransient, msg, err)
}

// KindOf 返回错误的分类。
// 非 *Error 的错误一律视为内部错误，由边界层记录日志并对外泛化。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// Is 判断错误是否属于指定分类。
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
