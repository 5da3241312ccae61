package services

import (
	"context"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auditctx"
)

// recordAudit logs the supplied entry while tolerating audit failures. Actor
// metadata is pulled from the context when the caller did not populate it.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if actor, ok := auditctx.FromContext(ctx); ok {
		if entry.UserID == nil && actor.UserID != "" {
			id := actor.UserID
			entry.UserID = &id
		}
		if entry.Email == "" {
			entry.Email = actor.Email
		}
		if entry.IPAddress == "" {
			entry.IPAddress = actor.IPAddress
		}
		if entry.UserAgent == "" {
			entry.UserAgent = actor.UserAgent
		}
		if actor.Role != "" {
			if entry.Metadata == nil {
				entry.Metadata = map[string]any{}
			}
			if _, exists := entry.Metadata["actor_role"]; !exists {
				entry.Metadata["actor_role"] = actor.Role
			}
		}
	}
	_ = audit.Log(ctx, entry)
}
