package code

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailsReturnsCopy(t *testing.T) {
	c := ErrorLinkNotFound.WithDetails("menu_link_content:1")

	assert.NotSame(t, ErrorLinkNotFound, c)
	assert.False(t, ErrorLinkNotFound.HaveDetails())
	assert.Equal(t, []string{"menu_link_content:1"}, c.Details())
	assert.Equal(t, ErrorLinkNotFound.Code(), c.Code())
	assert.Contains(t, c.Error(), "menu_link_content:1")
}

func TestWithDataKeepsDetails(t *testing.T) {
	c := Success.WithDetails("a").WithData(map[string]int{"n": 1})

	assert.True(t, c.Status())
	assert.True(t, c.HaveDetails())
	assert.True(t, c.HaveData())
	assert.Equal(t, map[string]int{"n": 1}, c.Data())
	assert.False(t, Success.HaveData())
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrorCycleDetected.WithDetails("x"))

	assert.True(t, errors.Is(err, ErrorCycleDetected))
	assert.False(t, errors.Is(err, ErrorDepthExceeded))
	assert.False(t, errors.Is(errors.New("plain"), ErrorCycleDetected))
}

func TestDuplicateCodePanics(t *testing.T) {
	assert.Panics(t, func() { NewError(ErrorLinkNotFound.Code(), lang{en: "dup"}) })
	assert.Panics(t, func() { NewSuss(Success.Code(), lang{en: "dup"}) })
}

func TestLang(t *testing.T) {
	defer func() { _ = SetGlobalDefaultLang(FALLBACK_LNG) }()

	require.NoError(t, SetGlobalDefaultLang("zh_cn"))
	assert.Equal(t, "zh_cn", GetGlobalDefaultLang())
	assert.Equal(t, "菜单不存在", ErrorMenuNotFound.Msg())
	// 缺少中文时回退到英文
	assert.Equal(t, "only english", lang{en: "only english"}.GetMessage())

	assert.Error(t, SetGlobalDefaultLang("fr"))
	assert.Equal(t, FALLBACK_LNG, GetGlobalDefaultLang())
	assert.Equal(t, "Menu not found", ErrorMenuNotFound.Msg())
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 200, ErrorServerInternal.StatusCode())
}
