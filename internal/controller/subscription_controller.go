package controller

import (
	"campus_connect_backend/internal/service"
	"campus_connect_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type SubscriptionController struct {
	SubscriptionService *service.SubscriptionService
}

func NewSubscriptionController(subscriptionService *service.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{SubscriptionService: subscriptionService}
}

// SubscribeRequest 候补订阅请求
// swagger:model SubscribeRequest
type SubscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

// Subscribe godoc
// @Summary 加入上线通知候补名单
// @Tags 订阅
// @Accept json
// @Produce json
// @Param body body SubscribeRequest true "邮箱"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "已订阅"
// @Router /api/subscribe [post]
func (c *SubscriptionController) Subscribe(ctx *gin.Context) {
	var req SubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subscriber, err := c.SubscriptionService.Subscribe(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidEmail):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrAlreadySubscribed):
			util.Conflict(ctx, "Email already subscribed")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, subscriber)
}

// Count godoc
// @Summary 订阅者数量
// @Tags 订阅
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/subscribe/count [get]
func (c *SubscriptionController) Count(ctx *gin.Context) {
	count, err := c.SubscriptionService.Count()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"count": count})
}

// ListAll godoc
// @Summary 全部订阅者
// @Description 管理员专用
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/subscribe/all [get]
func (c *SubscriptionController) ListAll(ctx *gin.Context) {
	subscribers, err := c.SubscriptionService.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, subscribers)
}

// NotifyLaunch godoc
// @Summary 向未通知的订阅者发送上线通知
// @Description 管理员专用，已通知过的订阅者不会重复通知
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/subscribe/notify [post]
func (c *SubscriptionController) NotifyLaunch(ctx *gin.Context) {
	notified, err := c.SubscriptionService.NotifyLaunch()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"notified": notified})
}
