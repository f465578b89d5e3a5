package orders

import (
	"errors"
	"time"

	"brainix/apperrors"
	"brainix/models"

	"gorm.io/gorm"
)

// CartView is the cart with live prices
type CartView struct {
	ID        uint              `json:"id"`
	Items     []models.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  int64             `json:"subtotal"`
	Savings   int64             `json:"savings"`
}

func (s *Service) cart(db *gorm.DB, userID uint) (*models.Cart, error) {
	cart := &models.Cart{}
	if err := db.Where(models.Cart{UserID: userID}).FirstOrCreate(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// Cart returns the caller's cart, creating it on first use
func (s *Service) Cart(userID uint) (*CartView, error) {
	cart, err := s.cart(s.DB, userID)
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := s.DB.Where("cart_id = ?", cart.ID).
		Preload("Course").Preload("Course.Instructor").
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	view := &CartView{ID: cart.ID, Items: items, ItemCount: len(items)}
	for _, item := range items {
		view.Subtotal += item.Course.EffectivePrice()
		view.Savings += item.Course.Price - item.Course.EffectivePrice()
	}
	return view, nil
}

// HasAccess reports whether the user holds a non-refunded enrollment for courseID
func HasAccess(db *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status IN ?", userID, courseID, []string{models.EnrollmentActive, models.EnrollmentCompleted}).
		Count(&count).Error
	return count > 0, err
}

// checkPurchasable enforces that course can be bought by userID
func checkPurchasable(db *gorm.DB, course models.Course, userID uint) error {
	if !course.IsPublished() {
		return apperrors.ErrCourseNotPublished
	}
	if course.InstructorID == userID {
		return apperrors.ErrOwnCourse
	}
	enrolled, err := HasAccess(db, userID, course.ID)
	if err != nil {
		return err
	}
	if enrolled {
		return apperrors.ErrAlreadyEnrolled
	}
	return nil
}

// AddToCart adds a purchasable course to the caller's cart
func (s *Service) AddToCart(userID, courseID uint) (*models.CartItem, error) {
	var course models.Course
	if err := s.DB.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, err
	}
	if err := checkPurchasable(s.DB, course, userID); err != nil {
		return nil, err
	}

	cart, err := s.cart(s.DB, userID)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.DB.Model(&models.CartItem{}).Where("cart_id = ? AND course_id = ?", cart.ID, courseID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.ErrAlreadyInCart
	}

	item := &models.CartItem{CartID: cart.ID, CourseID: courseID, PriceAtAdd: course.EffectivePrice()}
	if err := s.DB.Create(item).Error; err != nil {
		return nil, err
	}
	item.Course = course
	return item, nil
}

// RemoveFromCart deletes one course from the cart; it reports false when it was not there
func (s *Service) RemoveFromCart(userID, courseID uint) (bool, error) {
	cart, err := s.cart(s.DB, userID)
	if err != nil {
		return false, err
	}
	res := s.DB.Unscoped().Where("cart_id = ? AND course_id = ?", cart.ID, courseID).Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

func (s *Service) ClearCart(userID uint) error {
	cart, err := s.cart(s.DB, userID)
	if err != nil {
		return err
	}
	return s.DB.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
}

// cartLines loads the cart and prices it at current course prices, checking every course is still purchasable
func (s *Service) cartLines(userID uint) ([]Line, error) {
	cart, err := s.cart(s.DB, userID)
	if err != nil {
		return nil, err
	}
	var items []models.CartItem
	if err := s.DB.Where("cart_id = ?", cart.ID).Preload("Course").Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.ErrCartEmpty
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if err := checkPurchasable(s.DB, item.Course, userID); err != nil {
			var appErr *apperrors.Error
			if errors.As(err, &appErr) && item.Course.Title != "" {
				return nil, apperrors.New(appErr.Status, item.Course.Title+": "+appErr.Message)
			}
			return nil, err
		}
		lines = append(lines, Line{
			CourseID:      item.CourseID,
			InstructorID:  item.Course.InstructorID,
			Title:         item.Course.Title,
			OriginalPrice: item.Course.EffectivePrice(),
		})
	}
	return lines, nil
}

// QuoteCart prices the cart, applying code when given, without consuming anything
func (s *Service) QuoteCart(userID uint, code string) (*Quote, error) {
	lines, err := s.cartLines(userID)
	if err != nil {
		return nil, err
	}
	var coupon *models.Coupon
	if NormalizeCode(code) != "" {
		coupon, err = ValidateCoupon(s.DB, code, userID, lines, time.Now())
		if err != nil {
			return nil, err
		}
	}
	q := Price(lines, coupon)
	return &q, nil
}
