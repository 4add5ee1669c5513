package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

func ListPayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var payments []models.Payment
		if err := db.WithContext(c).Where("project_id = ?", project.ID).Order("id").Find(&payments).Error; err != nil {
			fail(c, err)
			return
		}
		var total, paid int64
		for _, pm := range payments {
			total += pm.Amount
			if pm.Status == models.PaymentPaid {
				paid += pm.Amount
			}
		}
		c.JSON(http.StatusOK, gin.H{"payments": payments, "total": total, "paid": paid})
	}
}

func CreatePayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Description string     `json:"description" binding:"required"`
			Amount      int64      `json:"amount" binding:"required,gt=0"`
			DueDate     *time.Time `json:"due_date"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok || !allowed(c, p, rbac.CapEditPayments) {
			return
		}
		payment := models.Payment{
			ProjectID:   project.ID,
			Description: in.Description,
			Amount:      in.Amount,
			Status:      models.PaymentPending,
			DueDate:     in.DueDate,
			CreatedByID: p.ID,
		}
		if err := db.WithContext(c).Create(&payment).Error; err != nil {
			fail(c, err)
			return
		}
		recordAudit(db, c, p, "payment.create", "payment", payment.ID, &project.ID, map[string]any{"amount": payment.Amount})

		c.JSON(http.StatusCreated, gin.H{"payment": payment})
	}
}

func MarkPaymentPaid(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok || !allowed(c, p, rbac.CapEditPayments) {
			return
		}
		var payment models.Payment
		if !findInProject(c, db, &payment, "payment", project.ID, "pid") {
			return
		}
		if payment.Status == models.PaymentPaid {
			fail(c, rbac.Invalid("payment is already paid"))
			return
		}
		now := time.Now()
		if err := db.WithContext(c).Model(&payment).Updates(map[string]any{"status": models.PaymentPaid, "paid_at": now}).Error; err != nil {
			fail(c, err)
			return
		}
		payment.Status, payment.PaidAt = models.PaymentPaid, &now
		recordAudit(db, c, p, "payment.paid", "payment", payment.ID, &project.ID, nil)

		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}
