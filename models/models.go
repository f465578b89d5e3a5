package models

// All lists every table owned by the service, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&StudentProfile{},
		&InstructorProfile{},
		&Category{},
		&Course{},
		&Module{},
		&Lesson{},
		&Enrollment{},
		&Progress{},
		&Certificate{},
		&Cart{},
		&CartItem{},
		&Coupon{},
		&CouponUsage{},
		&Order{},
		&OrderItem{},
		&Tag{},
		&Blog{},
		&BlogComment{},
		&Review{},
		&WebhookEvent{},
	}
}
