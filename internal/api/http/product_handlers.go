package httpapi

import (
	"net/http"
	"time"

	appProduct "github.com/gigboard/gigboard/internal/application/product"
	domain "github.com/gigboard/gigboard/internal/domain/product"
)

type createProductRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Images        []string   `json:"images"`
	BasePrice     int64      `json:"basePrice"`
	AuctionEndsAt *time.Time `json:"auctionEndsAt"`
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	p, err := s.productSvc.Create(r.Context(), au.UserID, appProduct.CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Images:        req.Images,
		BasePrice:     req.BasePrice,
		AuctionEndsAt: req.AuctionEndsAt,
	})
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	products, err := s.productSvc.ListAvailable(r.Context(), limit, offset)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, productsPayload(products))
}

func (s *Server) myListedProducts(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	limit, offset := parsePagination(r)
	products, err := s.productSvc.ListByOwner(r.Context(), au.UserID, limit, offset)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, productsPayload(products))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseUUIDParam(r, "productId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid product id")
		return
	}
	p, err := s.productSvc.Get(r.Context(), productID)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type updateProductRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Images        []string   `json:"images"`
	BasePrice     *int64     `json:"basePrice"`
	AuctionEndsAt *time.Time `json:"auctionEndsAt"`
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	productID, err := parseUUIDParam(r, "productId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid product id")
		return
	}
	var req updateProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	p, err := s.productSvc.Update(r.Context(), productID, au.UserID, appProduct.UpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Images:        req.Images,
		BasePrice:     req.BasePrice,
		AuctionEndsAt: req.AuctionEndsAt,
	})
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	productID, err := parseUUIDParam(r, "productId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid product id")
		return
	}
	if err := s.productSvc.Delete(r.Context(), productID, au.UserID); err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type bidRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) placeBid(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	productID, err := parseUUIDParam(r, "productId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid product id")
		return
	}
	var req bidRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	p, err := s.productSvc.PlaceBid(r.Context(), productID, au.UserID, req.Amount)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) buyProduct(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	productID, err := parseUUIDParam(r, "productId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid product id")
		return
	}
	p, err := s.productSvc.Finalize(r.Context(), productID, au.UserID)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func productsPayload(products []*domain.Product) []*domain.Product {
	if products == nil {
		return []*domain.Product{}
	}
	return products
}
