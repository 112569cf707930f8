package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	endorsementUC "github.com/khoahotran/devprofile/internal/application/usecase/endorsement"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

type EndorsementHandler struct {
	addUseCase  *endorsementUC.AddEndorsementUseCase
	listUseCase *endorsementUC.ListEndorsementsUseCase
	feedUseCase *endorsementUC.FeedUseCase
	logger      logger.Logger
}

func NewEndorsementHandler(
	addUC *endorsementUC.AddEndorsementUseCase,
	listUC *endorsementUC.ListEndorsementsUseCase,
	feedUC *endorsementUC.FeedUseCase,
	log logger.Logger,
) *EndorsementHandler {
	return &EndorsementHandler{
		addUseCase:  addUC,
		listUseCase: listUC,
		feedUseCase: feedUC,
		logger:      log,
	}
}

func (h *EndorsementHandler) EndorseSkill(c *gin.Context) {
	profileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	skillID, ok := parseUUIDParam(c, "skillId")
	if !ok {
		return
	}

	var req EndorseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	out, err := h.addUseCase.Execute(c.Request.Context(), endorsementUC.AddEndorsementInput{
		ProfileID:      profileID,
		SkillID:        skillID,
		EndorserName:   req.EndorsedBy.Name,
		EndorserEmail:  req.EndorsedBy.Email,
		EndorserAvatar: req.EndorsedBy.Avatar,
		Message:        req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Endorsement added successfully",
		"skill":       ToSkillDTO(out.Skill),
		"endorsement": ToEndorsementDTO(*out.Endorsement),
	})
}

func (h *EndorsementHandler) ListEndorsements(c *gin.Context) {
	profileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	skillID, ok := parseUUIDParam(c, "skillId")
	if !ok {
		return
	}

	out, err := h.listUseCase.Execute(c.Request.Context(), endorsementUC.ListEndorsementsInput{
		ProfileID: profileID,
		SkillID:   skillID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"endorsements": ToEndorsementDTOs(out.Endorsements)})
}

func (h *EndorsementHandler) Feed(c *gin.Context) {
	profileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	feed, err := h.feedUseCase.Execute(c.Request.Context(), endorsementUC.FeedInput{ProfileID: profileID})
	if err != nil {
		c.Error(err)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		c.Error(apperror.NewInternal("failed to render RSS feed", err))
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := c.Writer.WriteString(rss); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err, zap.String("profile_id", profileID.String()))
	}
}
