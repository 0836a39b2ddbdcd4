package main

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"xplore/models"
	"xplore/storage"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (a *App) signToken(userID uint, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(a.cfg.JWT.Secret))
}

// issueSession signs an access/refresh token pair, persists the refresh
// token on the user record and sets both session cookies.
func (a *App) issueSession(c *gin.Context, user *models.User) (access, refresh string, err error) {
	access, err = a.signToken(user.ID, a.cfg.JWT.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = a.signToken(user.ID, a.cfg.JWT.RefreshTTL)
	if err != nil {
		return "", "", err
	}

	if err := a.db.Model(user).Update("refresh_token", refresh).Error; err != nil {
		return "", "", err
	}
	user.RefreshToken = refresh

	secure := !a.cfg.IsDev()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", access, int(a.cfg.JWT.AccessTTL.Seconds()), "/", "", secure, true)
	c.SetCookie("refreshToken", refresh, int(a.cfg.JWT.RefreshTTL.Seconds()), "/", "", secure, true)
	return access, refresh, nil
}

func (a *App) clearSession(c *gin.Context) {
	secure := !a.cfg.IsDev()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", "", -1, "/", "", secure, true)
	c.SetCookie("refreshToken", "", -1, "/", "", secure, true)
}

func (a *App) signup(c *gin.Context) {
	var input struct {
		FullName string `form:"fullName" json:"fullName"`
		Username string `form:"username" json:"username"`
		Email    string `form:"email" json:"email"`
		Password string `form:"password" json:"password"`
	}
	if err := c.ShouldBind(&input); err != nil {
		respondError(c, http.StatusBadRequest, "All fields are required")
		return
	}

	for _, fld := range []string{input.FullName, input.Username, input.Email, input.Password} {
		if strings.TrimSpace(fld) == "" {
			respondError(c, http.StatusBadRequest, "All fields are required")
			return
		}
	}
	if !emailRegex.MatchString(input.Email) {
		respondError(c, http.StatusBadRequest, "Invalid Email format")
		return
	}
	if len(input.Password) < 6 {
		respondError(c, http.StatusBadRequest, "Password length must be six or greater")
		return
	}

	var existing int64
	a.db.Model(&models.User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&existing)
	if existing > 0 {
		respondError(c, http.StatusConflict, "User with email / username already exists")
		return
	}

	var profileImg, coverImg string
	if fh, err := c.FormFile("profileImg"); err == nil {
		url, err := storage.UploadFileHeader(c.Request.Context(), a.media, fh)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to upload profile image")
			return
		}
		profileImg = url
	}
	if fh, err := c.FormFile("coverImg"); err == nil {
		url, err := storage.UploadFileHeader(c.Request.Context(), a.media, fh)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to upload cover image")
			return
		}
		coverImg = url
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{
		FullName:   input.FullName,
		Username:   input.Username,
		Email:      input.Email,
		Password:   string(hashed),
		ProfileImg: profileImg,
		CoverImg:   coverImg,
	}
	if err := a.db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	go func(email, name string) {
		if err := a.mailer.SendWelcome(email, name); err != nil {
			slog.Warn("welcome mail not sent", "email", email, "error", err)
		}
	}(user.Email, user.FullName)

	respond(c, http.StatusOK, user, "User signed up successfully")
}

func (a *App) login(c *gin.Context) {
	var input struct {
		Username string `form:"username" json:"username"`
		Email    string `form:"email" json:"email"`
		Password string `form:"password" json:"password"`
	}
	if err := c.ShouldBind(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Username or email and password are required")
		return
	}

	identifier := input.Username
	if identifier == "" {
		identifier = input.Email
	}

	// Unknown identifier and wrong password answer identically so the
	// endpoint does not leak which accounts exist.
	var user models.User
	err := a.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	access, refresh, err := a.issueSession(c, &user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  access,
		"refreshToken": refresh,
	}, "User successfully logged in")
}

func (a *App) logout(c *gin.Context) {
	user, err := a.currentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "User is not authorized")
		return
	}

	if err := a.db.Model(user).Update("refresh_token", "").Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.clearSession(c)

	respond(c, http.StatusOK, user, user.FullName+" logged out successfully")
}

func (a *App) getMe(c *gin.Context) {
	user, err := a.currentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "User is not authorized")
		return
	}
	respond(c, http.StatusOK, user, "Current user retrieved successfully")
}
