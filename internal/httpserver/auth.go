package httpserver

import (
	"net/http"

	"pizzeria-storefront/internal/domain"
	customersvc "pizzeria-storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"`
	Customer     customerResponse `json:"customer"`
}

type customerResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func toCustomerResponse(c *domain.Customer) customerResponse {
	if c == nil {
		return customerResponse{}
	}
	return customerResponse{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
	}
}

func (h *handlers) signup(c *gin.Context) {
	var req customersvc.SignupInput
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	customer, err := h.deps.CustomerSvc.Signup(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": toCustomerResponse(customer)})
}

func (h *handlers) token(c *gin.Context) {
	var req tokenRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	sess, err := h.deps.CustomerSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tokenResponse(sess))
}

func (h *handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	sess, err := h.deps.CustomerSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tokenResponse(sess))
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"customer": toCustomerResponse(customerFrom(c))})
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req customersvc.ProfileInput
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	customer, err := h.deps.CustomerSvc.UpdateProfile(c.Request.Context(), customerFrom(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": toCustomerResponse(customer)})
}

func (h *handlers) tokenResponse(sess *customersvc.Session) tokenResponse {
	return tokenResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    h.deps.CustomerSvc.AccessTTLSeconds(),
		Customer:     toCustomerResponse(sess.Customer),
	}
}
