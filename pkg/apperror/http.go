package apperror

import "net/http"

// HTTPStatus 将错误分类映射为HTTP状态码。
// 这是HTTP边界层唯一需要的映射，业务代码不关心状态码。
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateVote:
		return http.StatusConflict
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindAdminAlreadyExists:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
