package goBindToken

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventTokenIssued      = "token_issued"
	auditEventTokenIssueFailed = "token_issue_failed"
	auditEventTokenAccepted    = "token_accepted"
	auditEventTokenRejected    = "token_rejected"
)

// AuditErrorCode is the reason recorded on a failed audit event.
type AuditErrorCode string

const (
	auditErrDisabled        AuditErrorCode = "codec_disabled"
	auditErrSignFailed      AuditErrorCode = "sign_failed"
	auditErrSignature       AuditErrorCode = "invalid_signature"
	auditErrMalformed       AuditErrorCode = "malformed_payload"
	auditErrClaimsMissing   AuditErrorCode = "claims_missing"
	auditErrTimeInvalid     AuditErrorCode = "time_claim_invalid"
	auditErrExpired         AuditErrorCode = "expired"
	auditErrNotYetValid     AuditErrorCode = "not_yet_valid"
	auditErrContextMismatch AuditErrorCode = "context_mismatch"
	auditErrInternal        AuditErrorCode = "internal_error"
)

// emitAudit records an outcome. Rejection reasons go in AuditEvent.Error as an
// AuditErrorCode; claims and tokens are never included.
func (c *Codec) emitAudit(eventType string, success bool, cc ClientContext, err error) {
	if c == nil || c.sink == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		IP:        cc.IP,
		Success:   success,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	if c.audit != nil {
		c.audit.Emit(context.Background(), event)
		return
	}
	c.sink.Emit(context.Background(), event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrCodecDisabled):
		return auditErrDisabled
	case errors.Is(err, ErrTokenSign):
		return auditErrSignFailed
	case errors.Is(err, ErrTokenSignature):
		return auditErrSignature
	case errors.Is(err, ErrTokenMalformed):
		return auditErrMalformed
	case errors.Is(err, ErrTokenClaimsMissing):
		return auditErrClaimsMissing
	case errors.Is(err, ErrTokenTimeInvalid):
		return auditErrTimeInvalid
	case errors.Is(err, ErrTokenExpired):
		return auditErrExpired
	case errors.Is(err, ErrTokenNotYetValid):
		return auditErrNotYetValid
	case errors.Is(err, ErrTokenContextMismatch):
		return auditErrContextMismatch
	default:
		return auditErrInternal
	}
}
