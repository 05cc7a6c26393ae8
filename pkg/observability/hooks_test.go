package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSchedulerHooks{}
	s.OnPassStart(ctx, "pass", 3)
	s.OnNodeComplete(ctx, "math/add", "", time.Millisecond)
	s.OnNodeComplete(ctx, "math/divide", "NODE_ERROR", time.Millisecond)
	s.OnPassComplete(ctx, "pass", PassStats{Steps: 2, Executed: 2, Failed: 1}, time.Second)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "report")
	c.OnCacheMiss(ctx, "report")
	c.OnCacheSet(ctx, "report", 1024)

	h := NoopHTTPHooks{}
	h.OnResponse(ctx, "GET", "/api/status", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Scheduler().(NoopSchedulerHooks); !ok {
		t.Error("Scheduler() should return NoopSchedulerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customScheduler := &testSchedulerHooks{}
	SetSchedulerHooks(customScheduler)
	if Scheduler() != customScheduler {
		t.Error("SetSchedulerHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Scheduler().(NoopSchedulerHooks); !ok {
		t.Error("Reset() should restore NoopSchedulerHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testSchedulerHooks{}
	SetSchedulerHooks(custom)
	SetSchedulerHooks(nil)

	if Scheduler() != custom {
		t.Error("SetSchedulerHooks(nil) should be ignored")
	}

	Reset()
}

type testSchedulerHooks struct{ NoopSchedulerHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
