package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"bingo-groups-backend/middleware"
	"bingo-groups-backend/models"
	"bingo-groups-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler covers signup and login. It is the thin boundary in front of
// the auth collaborator: the engine only ever sees the verified identity the
// middleware resolves.
type AuthHandler struct {
	db        *gorm.DB
	secret    string
	uploadDir string
}

func NewAuthHandler(db *gorm.DB, secret, uploadDir string) *AuthHandler {
	return &AuthHandler{db: db, secret: secret, uploadDir: uploadDir}
}

type signupRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
	Name     string `form:"name" json:"name"`
	Gender   string `form:"gender" json:"gender"`
	Age      int    `form:"age" json:"age"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	photo := ""
	if file, err := c.FormFile("photo"); err == nil {
		name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(file.Filename))
		dest := filepath.Join(h.uploadDir, name)
		if err := c.SaveUploadedFile(file, dest); err != nil {
			logger.Errorf("saving signup photo: %v", err)
		} else {
			photo = "/uploads/" + name
		}
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Name:     req.Name,
		Gender:   req.Gender,
		Age:      req.Age,
		Photo:    photo,
	}
	if err := h.db.Create(&user).Error; err != nil {
		logger.Errorf("creating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully", "id": user.ID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user not found"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := middleware.IssueToken(h.secret, user.ID, 24*time.Hour)
	if err != nil {
		logger.Errorf("issuing token for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	name := user.Name
	if name == "" {
		name = user.Username
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  name,
			"email": user.Email,
			"photo": user.Photo,
		},
	})
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return '_'
		}
	}, filepath.Base(name))
}
