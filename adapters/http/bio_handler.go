package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bioUC "github.com/khoahotran/devprofile/internal/application/usecase/bio"
	"github.com/khoahotran/devprofile/pkg/apperror"
)

type BioHandler struct {
	useCase *bioUC.GenerateBioUseCase
}

func NewBioHandler(uc *bioUC.GenerateBioUseCase) *BioHandler {
	return &BioHandler{useCase: uc}
}

func (h *BioHandler) GenerateBio(c *gin.Context) {
	var req GenerateBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	if req.Profile == nil {
		c.Error(apperror.NewMissingField("profile"))
		return
	}

	out, err := h.useCase.Execute(c.Request.Context(), bioUC.GenerateBioInput{
		Profile: req.Profile.ToDomain(),
		Tone:    req.ToneString(),
	})
	if err != nil {
		c.Error(err)
		return
	}

	BioGenerationsTotal.WithLabelValues(out.Source).Inc()
	c.JSON(http.StatusOK, gin.H{"bio": out.Bio, "source": out.Source})
}
