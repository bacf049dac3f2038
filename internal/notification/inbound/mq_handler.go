package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/otplogin/internal/notification/entity"
	"github.com/shandysiswandi/otplogin/internal/notification/usecase"
	"github.com/shandysiswandi/otplogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otplogin/internal/pkg/messaging"
	"github.com/shandysiswandi/otplogin/internal/pkg/uid"
	"github.com/shandysiswandi/otplogin/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := messaging.HeaderValue(msg, keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// OtpIssuedNotification decodes an otp_issued message and hands it to
// DispatchOtp. The body carries the plaintext code and is never logged.
func (h *MQHandler) OtpIssuedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OtpIssuedNotification")
	defer span.End()

	slog.InfoContext(ctx, "consume: otp issued notification", "msg_id", msg.ID(), "topic", msg.Topic())

	var payload event.OtpIssuedMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued notification", "msg_id", msg.ID(), "error", err)
		return nil
	}

	if err := h.uc.DispatchOtp(ctx, usecase.DispatchOtpInput{
		EventID:          payload.EventID,
		Channel:          entity.ChannelFromString(payload.Channel),
		Destination:      payload.Destination,
		Code:             payload.Code,
		ExpiresInMinutes: payload.ExpiresInMinutes,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp issued", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
