// services/canio/service.go
package canio

import (
	"context"
	"encoding/json"

	"canlink-go/bus"
	"canlink-go/errcode"
	"canlink-go/types"
	"canlink-go/x/conv"
	"canlink-go/x/timex"
)

// Topics owned by this service.
var (
	topicConfig  = bus.T("config", "can")
	topicState   = bus.T("can", "state")
	topicRx      = bus.T("can", "rx")
	topicControl = bus.T("can", "control", "+")
)

// Run is the service entry point. It waits for JSON config on "config/can",
// brings the adapter up, pumps received frames onto "can/rx", and answers
// control messages ("can/control/send|recover|status"). It blocks until ctx
// is cancelled.
func Run(ctx context.Context, conn *bus.Connection, factory PeripheralFactory) {
	s := &service{conn: conn, factory: factory}
	s.loop(ctx)
}

type service struct {
	conn    *bus.Connection
	factory PeripheralFactory

	adapter  *Adapter
	pipeStop context.CancelFunc
}

func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	ctrlSub := s.conn.Subscribe(topicControl)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState("idle", "awaiting_config")

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			s.publishState("stopped", "context_cancelled")
			return

		case msg := <-cfgSub.Channel():
			var doc types.CANConfig
			if err := decodeJSON(msg.Payload, &doc); err != nil {
				s.publishState("error", "config_decode_failed")
				continue
			}
			s.reconfigure(ctx, doc)

		case msg := <-ctrlSub.Channel():
			s.handleControl(msg)
		}
	}
}

// reconfigure tears down any running adapter and brings up a new one from doc.
func (s *service) reconfigure(ctx context.Context, doc types.CANConfig) {
	s.teardown()

	cfg, pipeCfg := BuildConfig(doc)
	per, ok := s.factory.ByController(cfg.Params.ControllerID)
	if !ok {
		println("Error: can controller unknown:", cfg.Params.ControllerID)
		s.publishState("error", string(errcode.InvalidParams))
		return
	}
	a := New(per, cfg)
	if !a.Init() {
		s.publishState("error", string(errcode.InstallFailed))
		return
	}
	s.adapter = a

	pctx, cancel := context.WithCancel(ctx)
	s.pipeStop = cancel
	NewPipeline(a, pipeCfg, s.publishFrame).Start(pctx)

	s.publishState("ready", "running")
}

func (s *service) teardown() {
	if s.pipeStop != nil {
		s.pipeStop()
		s.pipeStop = nil
	}
	if s.adapter != nil {
		s.adapter.Deinit()
		s.adapter = nil
	}
}

// -----------------------------------------------------------------------------
// Control plane
// -----------------------------------------------------------------------------

// sendReq is the payload shape for "can/control/send".
type sendReq struct {
	ID   string `json:"id"` // hex, no 0x
	Ext  bool   `json:"ext,omitempty"`
	RTR  bool   `json:"rtr,omitempty"`
	Data string `json:"data,omitempty"` // hex byte string
}

func (s *service) handleControl(msg *bus.Message) {
	if msg.Topic.Len() < 3 {
		return
	}
	method, _ := msg.Topic.At(2).(string)

	if s.adapter == nil {
		s.replyErr(msg, errcode.NotReady)
		return
	}

	switch method {
	case "send":
		var req sendReq
		if err := decodeJSON(msg.Payload, &req); err != nil {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		f, ok := frameFromReq(req)
		if !ok {
			s.replyErr(msg, errcode.InvalidFrame)
			return
		}
		if !s.adapter.Send(f) {
			s.replyErr(msg, errcode.Error)
			return
		}
		s.replyOK(msg, nil)

	case "recover":
		s.adapter.CheckAndRecover()
		s.replyOK(msg, nil)

	case "status":
		st, err := s.adapter.per.Status()
		if err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		s.replyOK(msg, map[string]any{"state": st.String()})
	}
}

func frameFromReq(req sendReq) (types.Frame, bool) {
	var f types.Frame
	id, ok := conv.ParseHexU32([]byte(req.ID))
	if !ok {
		return f, false
	}
	f.ID = id
	f.Extended = req.Ext
	f.RTR = req.RTR
	if len(req.Data)%2 != 0 || len(req.Data) > 16 {
		return f, false
	}
	for i := 0; i < len(req.Data); i += 2 {
		hi := conv.HexVal(req.Data[i])
		lo := conv.HexVal(req.Data[i+1])
		if hi == 255 || lo == 255 {
			return f, false
		}
		f.Data[i/2] = hi<<4 | lo
	}
	f.DLC = uint8(len(req.Data) / 2)
	return f, f.Validate() == nil
}

// -----------------------------------------------------------------------------
// Publishing
// -----------------------------------------------------------------------------

// publishFrame runs on the pipeline's consumer goroutine.
func (s *service) publishFrame(f types.Frame) {
	digits := 3
	if f.Extended {
		digits = 8
	}
	s.conn.Publish(s.conn.NewMessage(topicRx, map[string]any{
		"id":    string(conv.AppendU32Hex(nil, f.ID, digits)),
		"ext":   f.Extended,
		"rtr":   f.RTR,
		"dlc":   int(f.DLC),
		"data":  string(conv.AppendBytesHex(nil, f.Payload())),
		"ts_ms": timex.NowMs(),
	}, false))
}

func (s *service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(topicState, types.AdapterState{
		Level:  level,
		Status: status,
		TS:     timex.NowMs(),
	}, true))
}

func (s *service) replyOK(req *bus.Message, extra map[string]any) {
	if len(req.ReplyTo) == 0 {
		return
	}
	m := map[string]any{"ok": true}
	for k, v := range extra {
		m[k] = v
	}
	s.conn.Reply(req, m, false)
}

func (s *service) replyErr(req *bus.Message, code errcode.Code) {
	if len(req.ReplyTo) == 0 {
		return
	}
	s.conn.Reply(req, map[string]any{"ok": false, "error": string(code)}, false)
}

// decodeJSON accepts []byte, string, or any JSON-able value.
func decodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}
