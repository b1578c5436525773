package domain

import "time"

// User is an identity created on first OTP verification.
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// OTPRequest is the body of POST /auth/request-otp.
type OTPRequest struct {
	Phone string `json:"phone" binding:"required,min=6,max=32"`
}

// OTPResponse echoes the code back; there is no SMS gateway.
type OTPResponse struct {
	OK        bool   `json:"ok"`
	DemoCode  string `json:"demoCode"`
	ExpiresIn int    `json:"expiresIn"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp.
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// Session is returned after a successful verification.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
