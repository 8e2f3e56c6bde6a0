package handler

import (
	"errors"
	"net/http"
	"strings"

	"hospital-roster/internal/repository"
	"hospital-roster/internal/roster"
	"hospital-roster/internal/service"
	"hospital-roster/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type HospitalHandler struct {
	hospitalService *service.HospitalService
}

func NewHospitalHandler(hospitalService *service.HospitalService) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
	}
}

// actorFrom reads the caller identity set by the auth middleware
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:   c.GetString("userID"),
		Role: c.GetString("role"),
	}
}

// respondError maps service and repository errors to HTTP responses
func respondError(c *gin.Context, err error, fallback string) {
	var verrs roster.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		utils.ValidationErrorResponse(c, "Validation failed", verrs)
	case errors.Is(err, repository.ErrHospitalNotFound), errors.Is(err, repository.ErrAdminNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied), errors.Is(err, service.ErrSuperAdminOnly):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrDuplicateEmail):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		utils.ErrorResponse(c, http.StatusInternalServerError, fallback)
	}
}

// GetAllHospitals lists the hospitals visible to the caller.
// Filter query params (search, type, region, status, admin, minBeds, maxBeds) and
// sort/order are applied when present.
func (h *HospitalHandler) GetAllHospitals(c *gin.Context) {
	criteria := roster.ParseCriteria(c.Request.URL.Query())
	desc := strings.EqualFold(c.Query("order"), "desc")

	hospitals, err := h.hospitalService.ListHospitals(c.Request.Context(), actorFrom(c), criteria, c.Query("sort"), desc)
	if err != nil {
		respondError(c, err, "Failed to fetch hospitals")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// GetStats summarizes the hospitals visible to the caller
func (h *HospitalHandler) GetStats(c *gin.Context) {
	stats, err := h.hospitalService.Stats(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to compute statistics")
		return
	}
	utils.SuccessResponse(c, stats)
}

// GetHospital retrieves a specific hospital by ID
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	hospital, err := h.hospitalService.GetHospital(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch hospital")
		return
	}
	utils.SuccessResponse(c, hospital)
}

// GetAdmins lists a hospital's admins, the primary one first
func (h *HospitalHandler) GetAdmins(c *gin.Context) {
	admins, err := h.hospitalService.ListAdmins(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch admins")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"admins": admins,
		"count":  len(admins),
	})
}

// GetAuditTrail lists the audit entries of a hospital
func (h *HospitalHandler) GetAuditTrail(c *gin.Context) {
	logs, err := h.hospitalService.AuditTrail(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch audit trail")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// CreateHospital creates a new hospital with its admins (super admin only)
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var req service.CreateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.hospitalService.CreateHospital(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to create hospital")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":          "Hospital created successfully",
		"hospital":         result.Hospital,
		"primaryAdmin":     result.PrimaryAdmin,
		"addedAdmins":      result.AddedAdmins,
		"addedAdminsCount": result.AddedAdminsCount,
	})
}

// UpdateHospital applies changed fields and the admin reconciliation payload
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	var req service.UpdateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.hospitalService.UpdateHospital(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update hospital")
		return
	}

	message := "Hospital updated successfully"
	if result.AddedAdminsCount.Failed > 0 {
		message = "Hospital updated; some admins could not be added"
	}
	utils.SuccessResponse(c, gin.H{
		"message":             message,
		"hospital":            result.Hospital,
		"addedAdmins":         result.AddedAdmins,
		"addedAdminsCount":    result.AddedAdminsCount,
		"removedAdmins":       result.RemovedAdmins,
		"primaryAdminUpdated": result.PrimaryAdminUpdated,
	})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus moves a hospital to another status
func (h *HospitalHandler) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Status is required")
		return
	}

	hospital, err := h.hospitalService.ChangeStatus(c.Request.Context(), actorFrom(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to update status")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  "Status updated successfully",
		"hospital": hospital,
	})
}

// DeleteHospital soft deletes a hospital (super admin only)
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	if err := h.hospitalService.DeleteHospital(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete hospital")
		return
	}

	utils.MessageResponse(c, "Hospital deleted successfully")
}
