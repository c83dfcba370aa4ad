package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
	repo "github.com/kaamsetu/kaamsetu-api/internal/domain/repository"
)

// Recorder is the audit log sink. Record never returns an error:
// failures are reported to the operational log only, so a broken audit
// pipeline cannot abort the authentication step it describes.
type Recorder struct {
	Repo   repo.AuditRepository
	Logger *logrus.Logger

	// Optional secondary index so the trail is queryable by mobile,
	// role, or time range without touching Postgres.
	ES      *elasticsearch.Client
	ESIndex string
}

func NewRecorder(auditRepo repo.AuditRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *Recorder {
	return &Recorder{Repo: auditRepo, Logger: logger, ES: es, ESIndex: esIndex}
}

// Record writes one entry, log-after-action. A crash between the action
// and its log produces an unlogged action, which is an accepted gap.
func (r *Recorder) Record(ctx context.Context, e *entity.AuditEntry) {
	if r == nil || r.Repo == nil {
		return
	}
	if err := r.Repo.Insert(ctx, e); err != nil {
		if r.Logger != nil {
			r.Logger.WithError(err).WithFields(logrus.Fields{
				"mobile": e.Mobile,
				"step":   e.Step,
				"status": e.Status,
			}).Error("audit log write failed")
		}
		return
	}
	r.index(ctx, e)
}

func (r *Recorder) index(ctx context.Context, e *entity.AuditEntry) {
	if r.ES == nil || r.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"identity_id": e.IdentityID,
		"mobile":      e.Mobile,
		"role":        e.Role,
		"step":        e.Step,
		"status":      e.Status,
		"message":     e.Message,
		"ip":          e.IP,
		"device":      e.Device,
		"created_at":  e.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: r.ESIndex, DocumentID: e.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, r.ES)
	if err != nil {
		if r.Logger != nil {
			r.Logger.WithError(err).WithField("mobile", e.Mobile).Warn("audit es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && r.Logger != nil {
		r.Logger.WithField("status", res.Status()).WithField("mobile", e.Mobile).Warn("audit es index response error")
	}
}
