package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
)

// fakeDaemon serves methods on one end of a net.Pipe and returns a Client
// on the other.
func fakeDaemon(t *testing.T, methods handler.Map, opts *Options) (*Client, *jrpc2.Server) {
	t.Helper()
	sc, cc := net.Pipe()
	srv := jrpc2.NewServer(methods, &jrpc2.ServerOptions{AllowPush: true}).Start(channel.Line(sc, sc))
	c := New(cc, opts)
	t.Cleanup(func() {
		c.Close()
		_ = srv.Wait()
	})
	return c, srv
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestInvokeDecodesEnvelope(t *testing.T) {
	c, _ := fakeDaemon(t, handler.Map{
		common.MethodList: handler.New(func(_ context.Context, p *common.ListParams) (*common.SendResponse, error) {
			if !p.IsIncognito {
				return nil, errors.New("expected incognito")
			}
			return common.OK("", []common.DomainSummary{{Domain: "a.com", Cookies: 2}}), nil
		}),
	}, nil)

	res, err := c.List(testCtx(t), &common.ListParams{IsIncognito: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !res.IsOk || len(res.Result) != 1 || res.Result[0].Domain != "a.com" || res.Result[0].Cookies != 2 {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestInvokeFailureCarriesCode(t *testing.T) {
	c, _ := fakeDaemon(t, handler.Map{
		common.MethodAccountGet: handler.New(func(context.Context) (*common.SendResponse, error) {
			resp := common.Fail(syncerr.New(syncerr.AccountCheck, "Token is empty"))
			resp.Result = kv.Account{AccountID: "acc"}
			return resp, nil
		}),
	}, nil)

	res, err := c.Account(testCtx(t))
	if err != nil {
		t.Fatalf("a failed envelope is not a transport error: %v", err)
	}
	err = res.Err()
	if !errors.Is(err, syncerr.New(syncerr.AccountCheck, "")) {
		t.Fatalf("expected AccountCheck error, got %v", err)
	}
	if err.Error() != "Token is empty" {
		t.Fatalf("message = %q", err.Error())
	}
	if res.Result.AccountID != "acc" {
		t.Fatalf("expected the failed response to keep its result, got %+v", res)
	}
}

func TestResponseErrDefaultsToInternal(t *testing.T) {
	r := &Response[struct{}]{Msg: "boom"}
	if syncerr.CodeOf(r.Err()) != syncerr.Internal {
		t.Fatalf("code = %v", syncerr.CodeOf(r.Err()))
	}
	if (&Response[int]{IsOk: true}).Err() != nil {
		t.Fatal("ok response must not carry an error")
	}
}

func TestVersionAndRaw(t *testing.T) {
	c, _ := fakeDaemon(t, handler.Map{
		common.MethodVersion: handler.New(func(context.Context) (*common.VersionResult, error) {
			return &common.VersionResult{Version: "1.2.3"}, nil
		}),
		common.MethodRemove: handler.New(func(_ context.Context, p *common.RemoveParams) (*common.SendResponse, error) {
			return common.OK("Removed success", p.Domain), nil
		}),
	}, nil)
	ctx := testCtx(t)

	v, err := c.Version(ctx)
	if err != nil || v.Version != "1.2.3" {
		t.Fatalf("Version = %+v, %v", v, err)
	}

	out, err := c.Raw(ctx, common.MethodRemove, json.RawMessage(`{"domain":"b.com"}`))
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	var resp common.SendResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Msg != "Removed success" || resp.Result != "b.com" {
		t.Fatalf("unexpected raw response: %s", out)
	}

	if _, err := c.Raw(ctx, "no.such", nil); err == nil {
		t.Fatal("expected method not found")
	}
}

func TestOnLogReceivesNotifications(t *testing.T) {
	got := make(chan common.LogEvent, 1)
	_, srv := fakeDaemon(t, handler.Map{}, &Options{
		OnLog: func(ev common.LogEvent) { got <- ev },
	})

	ev := common.LogEvent{Type: common.IncognitoLog, Payload: common.LogPayload{Msg: "hi", Domain: "a.com"}}
	if err := srv.Notify(testCtx(t), "other", nil); err != nil {
		t.Fatalf("Notify other: %v", err)
	}
	if err := srv.Notify(testCtx(t), common.NotifyLog, ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	select {
	case e := <-got:
		if e.Type != common.IncognitoLog || e.Payload.Domain != "a.com" {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no log event delivered")
	}
}

func TestOnCallback(t *testing.T) {
	_, srv := fakeDaemon(t, handler.Map{}, &Options{
		OnCallback: func(_ context.Context, req *jrpc2.Request) (any, error) {
			return req.Method(), nil
		},
	})
	rsp, err := srv.Callback(testCtx(t), common.CallbackQueryTabs, nil)
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	var method string
	if err := rsp.UnmarshalResult(&method); err != nil {
		t.Fatalf("UnmarshalResult: %v", err)
	}
	if method != common.CallbackQueryTabs {
		t.Fatalf("callback answered %q", method)
	}
}

func TestCheckVersionMismatch(t *testing.T) {
	c, _ := fakeDaemon(t, handler.Map{
		common.MethodVersion: handler.New(func(context.Context) (*common.VersionResult, error) {
			return &common.VersionResult{Version: "2.0.0"}, nil
		}),
	}, nil)
	ctx := testCtx(t)
	t.Setenv(VersionCheckEnv, "")

	var buf bytes.Buffer
	c.CheckVersionMismatch(ctx, "2.0.0", &buf)
	if buf.Len() != 0 {
		t.Fatalf("unexpected warning: %q", buf.String())
	}

	c.CheckVersionMismatch(ctx, "1.0.0", &buf)
	if !strings.Contains(buf.String(), "differs from daemon version (2.0.0)") {
		t.Fatalf("expected mismatch warning, got %q", buf.String())
	}

	buf.Reset()
	t.Setenv(VersionCheckEnv, "1")
	c.CheckVersionMismatch(ctx, "1.0.0", &buf)
	if buf.Len() != 0 {
		t.Fatalf("warning not suppressed: %q", buf.String())
	}
}
