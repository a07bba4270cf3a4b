// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"errors"
	"strconv"

	"github.com/haierkeys/menu-tree-service/pkg/code"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "menu_tree"

var (
	// Mutations 链接与菜单写操作计数，按操作与结果码分组
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Menu and link mutations by operation and result.",
	}, []string{"op", "result"})

	// Rebuilds 重建次数
	Rebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rebuilds_total",
		Help:      "Rebuild passes by result.",
	}, []string{"result"})

	// RebuildLinks 最近一次重建各类链接数量
	RebuildLinks = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rebuild_links",
		Help:      "Link counts reported by the last rebuild.",
	}, []string{"kind"})

	// TreeLoadDuration 菜单树加载耗时
	TreeLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tree_load_duration_seconds",
		Help:      "Time spent loading a menu tree snapshot.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTPRequests HTTP 请求计数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
)

// Result 将错误转换为指标标签：成功为 ok，业务错误为错误码
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	var c *code.Code
	if errors.As(err, &c) {
		return strconv.Itoa(c.Code())
	}
	return "error"
}
