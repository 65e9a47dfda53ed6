package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/uploads"
)

// ResumeFormField is the multipart field carrying the file.
const ResumeFormField = "resume"

const MsgResumeUploaded = "Resume uploaded successfully"

type ResumeController struct {
	store      *uploads.Store
	principals PrincipalStore
	audit      UploadRecorder
	logger     *slog.Logger
}

func NewResumeController(store *uploads.Store, principals PrincipalStore, audit UploadRecorder, logger *slog.Logger) *ResumeController {
	return &ResumeController{
		store:      store,
		principals: principals,
		audit:      audit,
		logger:     logger,
	}
}

// Upload stores the submitted resume and points the principal at it.
// The previous resume, if any, is removed afterwards.
// POST /resume
func (rc *ResumeController) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	principalID := auth.GetPrincipalID(c)

	fh, err := c.FormFile(ResumeFormField)
	if err != nil {
		rc.fail(c, principalID, apperrors.ValidationWrap(uploads.ErrNoFile, "Please choose a file to upload"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		rc.fail(c, principalID, apperrors.Technical(err, "open upload"))
		return
	}
	defer f.Close()

	principal, err := rc.principals.GetPrincipalByID(ctx, principalID)
	if err != nil {
		rc.fail(c, principalID, apperrors.Technical(err, "load principal"))
		return
	}

	ref, err := rc.store.Save(ctx, fh.Filename, f)
	if err != nil {
		rc.fail(c, principalID, err)
		return
	}

	if err := rc.principals.SetResumePath(ctx, principalID, ref); err != nil {
		if delErr := rc.store.Delete(ctx, ref); delErr != nil {
			rc.logger.Warn("failed to remove orphaned resume", "path", ref, "error", delErr)
		}
		rc.fail(c, principalID, apperrors.Technical(err, "set resume path"))
		return
	}

	if old := principal.ResumePath; old != "" && old != ref {
		if err := rc.store.Delete(ctx, old); err != nil {
			rc.logger.Warn("failed to remove previous resume", "path", old, "error", err)
		}
	}

	if rc.audit != nil {
		rc.audit.LogUpload(principalID, "stored "+ref, nil)
	}
	rc.logger.Info("resume uploaded", "principal_id", principalID, "path", ref)

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": MsgResumeUploaded, "path": ref})
		return
	}
	redirectWith(c, auth.DefaultDestination, "message", MsgResumeUploaded)
}

func (rc *ResumeController) fail(c *gin.Context, principalID uint, err error) {
	if rc.audit != nil {
		rc.audit.LogUpload(principalID, "resume upload rejected", err)
	}
	if wantsJSON(c) {
		_ = c.Error(err)
		return
	}
	logAppError(rc.logger, c, err)
	redirectWith(c, auth.DefaultDestination, "error", apperrors.PublicMessage(err))
}
