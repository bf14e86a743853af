package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(New(KindValidation, "bad input")); got != KindValidation {
		t.Fatalf("kind=%v, want validation", got)
	}
	if got := KindOf(errors.New("plain")); got != 0 {
		t.Fatalf("plain error kind=%v, want 0", got)
	}
	if got := KindOf(nil); got != 0 {
		t.Fatalf("nil kind=%v, want 0", got)
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := Wrap(KindUnavailable, "存储读取失败", errors.New("disk io"))
	outer := fmt.Errorf("handler: %w", inner)

	if got := KindOf(outer); got != KindUnavailable {
		t.Fatalf("kind=%v, want unavailable", got)
	}
}

func TestErrorMessage(t *testing.T) {
	e := Wrap(KindNotFound, "日报不存在", errors.New("record not found"))
	if e.Error() != "日报不存在: record not found" {
		t.Fatalf("msg=%q", e.Error())
	}
	if New(KindNotFound, "日报不存在").Error() != "日报不存在" {
		t.Fatal("message without cause should be bare")
	}
	if !errors.Is(e, e.Err) {
		t.Fatal("unwrap should expose the cause")
	}
}

func TestNewf(t *testing.T) {
	e := Newf(KindValidation, "title 不能超过 %d 个字符", 300)
	if e.Msg != "title 不能超过 300 个字符" {
		t.Fatalf("msg=%q", e.Msg)
	}
}
