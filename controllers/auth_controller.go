package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/utils"
)

// Verification codes expire 10 minutes after issuance.
const verificationCodeTTL = 10 * time.Minute

type AuthController struct {
	DB        *gorm.DB
	Mailer    utils.Mailer
	JWTSecret string
	TokenTTL  time.Duration
}

// ====== INPUT STRUCTS ======

type RegisterInitiateInput struct {
	Email string `json:"email" binding:"required,email"`
}

type RegisterConfirmInput struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required"`
	FullName string `json:"fullname" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type UserUpdateInput struct {
	FullName *string `json:"fullname"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type PasswordResetInitiateInput struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmInput struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=4"`
}

// ====== HANDLERS ======

// RegisterInitiate issues a registration code and emails it. The mail
// leaves on a background goroutine; a delivery failure is only logged.
func (a *AuthController) RegisterInitiate(c *gin.Context) {
	var input RegisterInitiateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	if err := a.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user with this email already exists"})
		return
	}

	code, err := a.issueCode(input.Email, models.PurposeRegistration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create verification code"})
		return
	}

	go a.sendCodeMail(input.Email, "Your Registration Verification Code",
		"Your verification code is: <b>"+code+"</b>")

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent to email."})
}

// RegisterConfirm consumes the code and creates the account.
func (a *AuthController) RegisterConfirm(c *gin.Context) {
	var input RegisterConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !a.consumeCode(input.Email, input.Code, models.PurposeRegistration) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired verification code"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		FullName: input.FullName,
		Email:    input.Email,
		Password: string(hashed),
	}
	if err := a.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully registered.", "user_id": user.ID})
}

// Login verifies the password and issues a bearer token. Posted as a form
// so OAuth2-style password clients keep working.
func (a *AuthController) Login(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var user models.User
	if err := a.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
		return
	}

	token, err := utils.GenerateToken(a.JWTSecret, user.ID.String(), a.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (a *AuthController) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := a.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"fullname": user.FullName,
		"email":    user.Email,
	})
}

// UpdateMe applies only the fields present in the payload.
func (a *AuthController) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input UserUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := a.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if input.Email != nil && *input.Email != user.Email {
		var existing models.User
		if err := a.DB.Where("email = ?", *input.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "email is already in use"})
			return
		}
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}

	if err := a.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user": gin.H{
			"id":       user.ID,
			"fullname": user.FullName,
			"email":    user.Email,
		},
	})
}

// DeleteMe removes the account. Lessons are deliberately NOT cascaded:
// an account that still owns lessons cannot be deleted, so lessons never
// end up referencing a vanished owner.
func (a *AuthController) DeleteMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var lessonCount int64
	if err := a.DB.Model(&models.Lesson{}).Where("user_id = ?", userID).Count(&lessonCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check user lessons"})
		return
	}
	if lessonCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "delete your lessons before deleting the account"})
		return
	}

	res := a.DB.Delete(&models.User{}, "id = ?", userID)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User account deleted successfully."})
}

func (a *AuthController) PasswordResetInitiate(c *gin.Context) {
	var input PasswordResetInitiateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := a.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user with this email does not exist"})
		return
	}

	code, err := a.issueCode(input.Email, models.PurposePasswordReset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create verification code"})
		return
	}

	go a.sendCodeMail(input.Email, "Your Password Reset Verification Code",
		"Your password reset verification code is: <b>"+code+"</b>")

	c.JSON(http.StatusOK, gin.H{"message": "Password reset verification code sent to email."})
}

func (a *AuthController) PasswordResetConfirm(c *gin.Context) {
	var input PasswordResetConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !a.consumeCode(input.Email, input.Code, models.PurposePasswordReset) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired verification code"})
		return
	}

	var user models.User
	if err := a.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user.Password = string(hashed)
	if err := a.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully."})
}

// issueCode creates a fresh single-use code for the email+purpose pair.
func (a *AuthController) issueCode(email, purpose string) (string, error) {
	code := utils.GenerateVerificationCode()
	entry := models.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(verificationCodeTTL),
	}
	if err := a.DB.Create(&entry).Error; err != nil {
		return "", err
	}
	return code, nil
}

// consumeCode matches on email+code+purpose and expiry, deleting the row
// in the same statement so a code can never verify twice.
func (a *AuthController) consumeCode(email, code, purpose string) bool {
	res := a.DB.
		Where("email = ? AND code = ? AND purpose = ? AND expires_at >= ?",
			email, code, purpose, time.Now()).
		Delete(&models.VerificationCode{})
	return res.Error == nil && res.RowsAffected > 0
}

func (a *AuthController) sendCodeMail(to, subject, body string) {
	if err := a.Mailer.Send(to, subject, body); err != nil {
		log.Printf("failed to send email to %s: %v", to, err)
	}
}
