package orders

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"brainix/models"
	"brainix/services/payments"
)

// CheckoutResult is returned to the client to confirm payment
type CheckoutResult struct {
	Order            *models.Order `json:"order"`
	ClientSecret     string        `json:"client_secret"`
	PublishableTotal int64         `json:"publishable_total"`
	Fulfilled        bool          `json:"fulfilled"`
}

// Checkout turns the cart into a PENDING order and opens a payment intent for it.
// Free orders are fulfilled immediately. Earlier PENDING orders of the user are cancelled.
func (s *Service) Checkout(ctx context.Context, user models.User, couponCode string) (*CheckoutResult, error) {
	quote, err := s.QuoteCart(user.ID, couponCode)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber: NewOrderNumber(),
		UserID:      user.ID,
		Subtotal:    quote.Subtotal,
		Discount:    quote.Discount,
		Total:       quote.Total,
		Currency:    s.Currency,
		Status:      models.OrderPending,
	}
	if quote.Coupon != nil {
		order.CouponID = &quote.Coupon.ID
	}
	for _, l := range quote.Lines {
		order.Items = append(order.Items, models.OrderItem{
			CourseID:      l.CourseID,
			InstructorID:  l.InstructorID,
			OriginalPrice: l.OriginalPrice,
			Price:         l.Price,
		})
	}

	var superseded []models.Order
	tx := s.DB.Begin()
	if err := tx.Where("user_id = ? AND status = ?", user.ID, models.OrderPending).Find(&superseded).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(superseded) > 0 {
		if err := tx.Model(&models.Order{}).
			Where("user_id = ? AND status = ?", user.ID, models.OrderPending).
			Update("status", models.OrderCancelled).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	s.cancelIntents(ctx, superseded)

	result := &CheckoutResult{Order: order, PublishableTotal: order.Total}

	if order.Total == 0 {
		log.Printf("[CHECKOUT] order %s is free, fulfilling immediately", order.OrderNumber)
		if _, err := s.Fulfill(ctx, order.ID); err != nil {
			return nil, err
		}
		result.Fulfilled = true
		if reloaded, err := s.Order(order.ID); err == nil {
			result.Order = reloaded
		}
		return result, nil
	}

	intent, err := s.Payments.CreatePaymentIntent(ctx, payments.IntentParams{
		Amount:   order.Total,
		Currency: order.Currency,
		Metadata: map[string]string{
			"order_id":     strconv.FormatUint(uint64(order.ID), 10),
			"order_number": order.OrderNumber,
			"user_id":      strconv.FormatUint(uint64(user.ID), 10),
		},
		Description:    "BrainiX order " + order.OrderNumber,
		ReceiptEmail:   user.Email,
		IdempotencyKey: order.OrderNumber,
	})
	if err != nil {
		log.Printf("[CHECKOUT] payment intent for %s failed: %v", order.OrderNumber, err)
		if failErr := s.DB.Model(order).Update("status", models.OrderFailed).Error; failErr != nil {
			log.Printf("[CHECKOUT] could not mark %s as failed: %v", order.OrderNumber, failErr)
		} else {
			order.Status = models.OrderFailed
		}
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	if err := s.DB.Model(order).Update("payment_intent_id", intent.ID).Error; err != nil {
		return nil, err
	}
	order.PaymentIntentID = intent.ID
	result.ClientSecret = intent.ClientSecret
	return result, nil
}

// cancelIntents releases the payment intents of superseded orders; failures are only logged
func (s *Service) cancelIntents(ctx context.Context, orders []models.Order) {
	for _, o := range orders {
		if o.PaymentIntentID == "" {
			continue
		}
		if err := s.Payments.CancelPaymentIntent(ctx, o.PaymentIntentID); err != nil {
			log.Printf("[CHECKOUT] cancel intent %s of %s: %v", o.PaymentIntentID, o.OrderNumber, err)
		}
	}
}

// Order loads an order with items, their courses and the coupon
func (s *Service) Order(id uint) (*models.Order, error) {
	order := &models.Order{}
	if err := s.DB.Preload("Items").Preload("Items.Course").Preload("Coupon").First(order, id).Error; err != nil {
		return nil, err
	}
	return order, nil
}
