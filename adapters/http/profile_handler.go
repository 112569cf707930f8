package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	profileUC "github.com/khoahotran/devprofile/internal/application/usecase/profile"
	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
)

type ProfileHandler struct {
	useCase *profileUC.ProfileUseCase
}

func NewProfileHandler(uc *profileUC.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{useCase: uc}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	out, err := h.useCase.ExecuteListProfiles(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTOs(out.Profiles))
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	out, err := h.useCase.ExecuteGetProfile(c.Request.Context(), profileUC.GetProfileInput{ProfileID: id})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(out.Profile))
}

func (h *ProfileHandler) GetProfileByEmail(c *gin.Context) {
	out, err := h.useCase.ExecuteGetProfileByEmail(c.Request.Context(), profileUC.GetProfileByEmailInput{Email: c.Param("email")})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(out.Profile))
}

func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	p, skills, links, work, err := req.ToDomain()
	if err != nil {
		c.Error(apperror.NewInvalidInput("dates must be YYYY-MM-DD or RFC 3339", err))
		return
	}

	out, err := h.useCase.ExecuteCreateProfile(c.Request.Context(), profileUC.CreateProfileInput{
		Profile:        p,
		Skills:         skills,
		SocialLinks:    links,
		WorkExperience: work,
		Achievements:   req.Achievements,
		Interests:      req.Interests,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToProfileDTO(out.Profile))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	out, err := h.useCase.ExecuteUpdateProfile(c.Request.Context(), profileUC.UpdateProfileInput{
		ProfileID: id,
		Update:    req.ToDomain(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(out.Profile))
}

func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.useCase.ExecuteDeleteProfile(c.Request.Context(), profileUC.DeleteProfileInput{ProfileID: id}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}

func (h *ProfileHandler) UpdateTheme(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewMissingField("theme"))
		return
	}

	out, err := h.useCase.ExecuteUpdateTheme(c.Request.Context(), profileUC.UpdateThemeInput{
		ProfileID: id,
		Theme:     profile.Theme(req.Theme),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": out.Theme})
}

func (h *ProfileHandler) GetStats(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	out, err := h.useCase.ExecuteGetStats(c.Request.Context(), profileUC.GetProfileInput{ProfileID: id})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToStatsDTO(out.Stats))
}

func (h *ProfileHandler) UploadPicture(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewMissingField("file"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("file cannot open", err))
		return
	}
	defer file.Close()

	out, err := h.useCase.ExecuteUploadPicture(c.Request.Context(), profileUC.UploadPictureInput{
		ProfileID: id,
		File:      file,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(out.Profile))
}
