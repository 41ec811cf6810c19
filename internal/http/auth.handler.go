package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/utils"
)

// IssueToken upserts a user by email and returns a signed identity token.
func IssueToken(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email string `json:"email" binding:"required,email"`
			Name  string `json:"name"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user := entity.User{Email: body.Email, Name: body.Name}
		err := ctx.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&user).Error
		if err != nil {
			ctx.Logger.Error("Failed to upsert user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		if err := ctx.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			ctx.Logger.Error("Failed to load user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		token, err := utils.GenerateJWT(user.ID.String())
		if err != nil {
			ctx.Logger.Error("Failed to generate token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}
