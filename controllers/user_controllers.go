package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/middlewares"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

type UserController struct {
	DB           *gorm.DB
	Tokens       *utils.TokenManager
	CookieName   string
	CookieSecure bool
}

func NewUserController(db *gorm.DB, tokens *utils.TokenManager, cookieName string, cookieSecure bool) *UserController {
	return &UserController{DB: db, Tokens: tokens, CookieName: cookieName, CookieSecure: cookieSecure}
}

// Register creates a staff account. The very first account may register
// itself (and must be an admin); after that only an admin can add users.
func (uc *UserController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var users int64
	if err := uc.DB.Model(&models.User{}).Count(&users).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if users == 0 {
		if req.Role != models.RoleAdmin {
			utils.RespondErrorCode(c, http.StatusBadRequest, "ADMIN_REQUIRED", errors.New("the first account must be an admin"))
			return
		}
	} else if _, role, ok := middlewares.CurrentUser(c); !ok || role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, errors.New("admin access required"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing int64
	if err := uc.DB.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if existing > 0 {
		utils.RespondErrorCode(c, http.StatusBadRequest, "EMAIL_EXISTS", errors.New("email already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login verifies the credentials and hands out a token, both in the body
// and as an HttpOnly cookie.
func (uc *UserController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := uc.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(uc.CookieName, token, int(uc.Tokens.TTL().Seconds()), "/", "", uc.CookieSecure, true)

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

func (uc *UserController) Logout(c *gin.Context) {
	if token := c.GetString(middlewares.ContextToken); token != "" {
		uc.Tokens.BlacklistToken(token)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(uc.CookieName, "", -1, "/", "", uc.CookieSecure, true)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID, _, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	users := []models.User{}
	if err := uc.DB.Order("name ASC").Find(&users).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}
