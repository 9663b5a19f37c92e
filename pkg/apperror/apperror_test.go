package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfAndIs(t *testing.T) {
	err := NotFound("频道不存在")
	if KindOf(err) != KindNotFound {
		t.Fatalf("KindOf = %v, 期望 KindNotFound", KindOf(err))
	}
	if !Is(err, KindNotFound) {
		t.Fatal("Is应识别NotFound")
	}
	if Is(err, KindValidation) {
		t.Fatal("Is不应把NotFound识别为Validation")
	}
	if Is(nil, KindInternal) {
		t.Fatal("nil不属于任何分类")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := DuplicateVote("已经投过相同的票")
	wrapped := fmt.Errorf("事务失败: %w", inner)

	if !Is(wrapped, KindDuplicateVote) {
		t.Fatal("包装后的错误应保留原分类")
	}
}

func TestUnknownErrorIsInternal(t *testing.T) {
	plain := errors.New("磁盘炸了")
	if KindOf(plain) != KindInternal {
		t.Fatal("未分类的错误应视为内部错误")
	}
}

func TestTransientPreservesCause(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := Transient("查询超时", cause)

	if !errors.Is(err, cause) {
		t.Fatal("Transient应保留底层错误链")
	}
	if !Is(err, KindTransient) {
		t.Fatal("应识别为Transient")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("gone"), http.StatusNotFound},
		{DuplicateVote("dup"), http.StatusConflict},
		{AdminAlreadyExists("taken"), http.StatusConflict},
		{InvalidCredentials("nope"), http.StatusUnauthorized},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{Transient("later", errors.New("timeout")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, 期望 %d", tc.err, got, tc.want)
		}
	}
}
