// file: internals/features/admin/controller/admin_auth_controller.go
package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"helmetkiosk_backend/internals/configs"
	"helmetkiosk_backend/internals/features/admin/dto"
	helper "helmetkiosk_backend/internals/helpers"
	"helmetkiosk_backend/internals/middlewares"
)

const adminSessionTTL = 12 * time.Hour

type AdminAuthController struct{}

func NewAdminAuthController() *AdminAuthController { return &AdminAuthController{} }

/* =======================================================================
   POST /api/admin/login — cookie JWT (juga dikembalikan di body)
======================================================================= */

func (h *AdminAuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return helper.ValidationError(c, err)
	}

	// gagal dengan pesan yang sama untuk username ataupun password salah
	if req.Username != configs.AdminUsername || configs.AdminPasswordHash == "" {
		log.Printf("❌ [ADMIN] login gagal untuk %q", req.Username)
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(configs.AdminPasswordHash), []byte(req.Password)); err != nil {
		log.Printf("❌ [ADMIN] login gagal untuk %q", req.Username)
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := middlewares.IssueAdminToken(req.Username, adminSessionTTL)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.AdminCookieName,
		Value:    token,
		Expires:  time.Now().Add(adminSessionTTL),
		HTTPOnly: true,
		Secure:   configs.IsProduction(),
		SameSite: "Lax",
		Path:     "/",
	})

	log.Printf("✅ [ADMIN] login: %s", req.Username)
	return c.JSON(dto.LoginResponse{Success: true, Username: req.Username, Token: token})
}

/* =======================================================================
   POST /api/admin/logout
======================================================================= */

func (h *AdminAuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.AdminCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
	return helper.Success(c, "Logged out", nil)
}
