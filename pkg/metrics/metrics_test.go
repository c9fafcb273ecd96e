package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化
func TestInitMetrics(t *testing.T) {
	InitMetrics()

	if HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal未初始化")
	}
	if HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration未初始化")
	}
	if BooksLive == nil {
		t.Error("BooksLive未初始化")
	}
	if RateLimitRejectedTotal == nil {
		t.Error("RateLimitRejectedTotal未初始化")
	}
	if SnapshotSaveDuration == nil {
		t.Error("SnapshotSaveDuration未初始化")
	}
}

// TestInitMetricsIdempotent 重复初始化不应panic（promauto重复注册会panic）
func TestInitMetricsIdempotent(t *testing.T) {
	InitMetrics()
	InitMetrics() // 第二次应被initialized标记拦截
}

// TestCounter 测试Counter指标
func TestCounter(t *testing.T) {
	InitMetrics()

	before := getCounterValue(t, BooksAddedTotal)

	IncCounter(BooksAddedTotal)
	IncCounter(BooksAddedTotal)
	IncCounter(BooksAddedTotal)

	value := getCounterValue(t, BooksAddedTotal)
	if value-before != 3 {
		t.Errorf("Counter增量错误: expected=3, got=%f", value-before)
	}
}

// TestCounterVec 测试CounterVec指标
func TestCounterVec(t *testing.T) {
	InitMetrics()

	IncCounterVec(RateLimitRejectedTotal, map[string]string{"route": "GET"})
	IncCounterVec(RateLimitRejectedTotal, map[string]string{"route": "GET"})
	IncCounterVec(RateLimitRejectedTotal, map[string]string{"route": "DELETE"})

	getValue := getCounterValue(t, RateLimitRejectedTotal.With(prometheus.Labels{"route": "GET"}))
	if getValue < 2 {
		t.Errorf("GET标签计数错误: expected>=2, got=%f", getValue)
	}
}

// TestGauge 测试Gauge指标
func TestGauge(t *testing.T) {
	InitMetrics()

	SetGauge(BooksLive, 42)

	var m dto.Metric
	if err := BooksLive.Write(&m); err != nil {
		t.Fatalf("读取Gauge失败: %v", err)
	}
	if m.GetGauge().GetValue() != 42 {
		t.Errorf("Gauge值错误: expected=42, got=%f", m.GetGauge().GetValue())
	}
}

// getCounterValue 读取Counter当前值（测试辅助）
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	if err := counter.Write(&m); err != nil {
		t.Fatalf("读取Counter失败: %v", err)
	}
	return m.GetCounter().GetValue()
}
