// Package shopapitest provides an in-memory stand-in for the remote shop API
// for use in tests.
package shopapitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talkincode/hexshop/internal/domain"
)

const (
	Username = "admin@example.com"
	Password = "secret"
	Token    = "token-1"
)

// Call is one request seen by the fake server.
type Call struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

type failure struct {
	status  int
	message string
}

// Server is a fake remote shop API backed by memory.
type Server struct {
	*httptest.Server
	APIPath  string
	PageSize int

	mu       sync.Mutex
	products []domain.Product
	cart     []domain.CartItem
	calls    []Call
	failures map[string]failure
	nextID   int
}

// NewServer starts a fake API serving /api/{apiPath}/... routes.
func NewServer(apiPath string) *Server {
	s := &Server{APIPath: apiPath, PageSize: 10, failures: map[string]failure{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Seed replaces the product catalog.
func (s *Server) Seed(products ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = nil
	for _, p := range products {
		if p.ID == "" {
			s.nextID++
			p.ID = fmt.Sprintf("p%d", s.nextID)
		}
		s.products = append(s.products, p.Clone())
	}
}

// Products returns a copy of the catalog.
func (s *Server) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	return out
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// ShopPath returns /api/{apiPath}{p}.
func (s *Server) ShopPath(p string) string {
	return "/api/" + s.APIPath + p
}

// FailOnce makes the next request matching method and path fail.
func (s *Server) FailOnce(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	key := r.Method + " " + r.URL.Path
	f, failing := s.failures[key]
	if failing {
		delete(s.failures, key)
	}
	s.mu.Unlock()

	if failing {
		writeJSON(w, f.status, map[string]interface{}{"success": false, "message": f.message})
		return
	}

	path := r.URL.Path
	shop := s.ShopPath("")
	switch {
	case path == "/admin/signin" && r.Method == http.MethodPost:
		s.signin(w, body)
	case path == "/api/user/check" && r.Method == http.MethodPost:
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "please sign in"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	case path == "/logout" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "signed out"})
	case strings.HasPrefix(path, shop+"/admin/"):
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "please sign in"})
			return
		}
		s.admin(w, r, strings.TrimPrefix(path, shop+"/admin"), body)
	case strings.HasPrefix(path, shop+"/"):
		s.public(w, r, strings.TrimPrefix(path, shop), body)
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
	}
}

func authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == Token
}

func (s *Server) signin(w http.ResponseWriter, body []byte) {
	var creds domain.Credentials
	_ = json.Unmarshal(body, &creds)
	if creds.Username != Username || creds.Password != Password {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "login failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"uid":     "u1",
		"token":   Token,
		"expired": time.Now().Add(24 * time.Hour).UnixMilli(),
	})
}

func (s *Server) admin(w http.ResponseWriter, r *http.Request, path string, body []byte) {
	switch {
	case path == "/products" && r.Method == http.MethodGet:
		s.writePage(w, r, "")
	case path == "/product" && r.Method == http.MethodPost:
		var in struct {
			Data domain.Product `json:"data"`
		}
		if err := json.Unmarshal(body, &in); err != nil || in.Data.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": []string{"title is required"}})
			return
		}
		s.mu.Lock()
		s.nextID++
		in.Data.ID = fmt.Sprintf("p%d", s.nextID)
		s.products = append(s.products, in.Data)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "created"})
	case strings.HasPrefix(path, "/product/"):
		id := strings.TrimPrefix(path, "/product/")
		s.mu.Lock()
		idx := s.indexOf(id)
		if idx < 0 {
			s.mu.Unlock()
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "product not found"})
			return
		}
		switch r.Method {
		case http.MethodPut:
			var in struct {
				Data domain.Product `json:"data"`
			}
			_ = json.Unmarshal(body, &in)
			in.Data.ID = id
			s.products[idx] = in.Data
		case http.MethodDelete:
			s.products = append(s.products[:idx], s.products[idx+1:]...)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	case path == "/upload" && r.Method == http.MethodPost:
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		file, header, err := r.FormFile("file-to-upload")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "file missing"})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"imageUrl": fmt.Sprintf("https://img.test/%s?size=%d", header.Filename, len(data)),
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
	}
}

func (s *Server) public(w http.ResponseWriter, r *http.Request, path string, body []byte) {
	switch {
	case path == "/products" && r.Method == http.MethodGet:
		s.writePage(w, r, r.URL.Query().Get("category"))
	case strings.HasPrefix(path, "/product/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/product/")
		s.mu.Lock()
		idx := s.indexOf(id)
		var p domain.Product
		if idx >= 0 {
			p = s.products[idx].Clone()
		}
		s.mu.Unlock()
		if idx < 0 {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "product not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "product": p})
	case path == "/cart" && r.Method == http.MethodGet:
		s.mu.Lock()
		cart := s.cartLocked()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": cart})
	case path == "/cart" && r.Method == http.MethodPost:
		in, ok := decodeCartItem(w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		idx := s.indexOf(in.ProductID)
		if idx < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "product not found"})
			return
		}
		for i := range s.cart {
			if s.cart[i].ProductID == in.ProductID {
				s.cart[i].Qty += in.Qty
				writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
				return
			}
		}
		s.nextID++
		s.cart = append(s.cart, domain.CartItem{
			ID:        fmt.Sprintf("c%d", s.nextID),
			ProductID: in.ProductID,
			Qty:       in.Qty,
			Product:   s.products[idx].Clone(),
		})
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	case strings.HasPrefix(path, "/cart/"):
		id := strings.TrimPrefix(path, "/cart/")
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.cart {
			if s.cart[i].ID != id {
				continue
			}
			if r.Method == http.MethodDelete {
				s.cart = append(s.cart[:i], s.cart[i+1:]...)
			} else {
				in, ok := decodeCartItem(w, body)
				if !ok {
					return
				}
				s.cart[i].Qty = in.Qty
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "cart item not found"})
	case path == "/carts" && r.Method == http.MethodDelete:
		s.mu.Lock()
		s.cart = nil
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	case path == "/order" && r.Method == http.MethodPost:
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.cart) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "cart is empty"})
			return
		}
		total := s.cartLocked().Total
		s.cart = nil
		s.nextID++
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "order placed",
			"orderId":   fmt.Sprintf("o%d", s.nextID),
			"total":     total,
			"create_at": time.Now().Unix(),
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
	}
}

type cartItemIn struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

func decodeCartItem(w http.ResponseWriter, body []byte) (cartItemIn, bool) {
	var in struct {
		Data cartItemIn `json:"data"`
	}
	if err := json.Unmarshal(body, &in); err != nil || in.Data.Qty < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "invalid cart item"})
		return cartItemIn{}, false
	}
	return in.Data, true
}

func (s *Server) cartLocked() domain.Cart {
	cart := domain.Cart{Carts: []domain.CartItem{}}
	for _, it := range s.cart {
		it.Total = float64(it.Qty) * it.Product.Price
		it.FinalTotal = it.Total
		cart.Total += it.Total
		cart.Carts = append(cart.Carts, it)
	}
	cart.FinalTotal = cart.Total
	return cart
}

func (s *Server) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, category string) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	s.mu.Lock()
	var all []domain.Product
	for _, p := range s.products {
		if category == "" || p.Category == category {
			all = append(all, p.Clone())
		}
	}
	s.mu.Unlock()

	totalPages := (len(all) + s.PageSize - 1) / s.PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * s.PageSize
	end := start + s.PageSize
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": append([]domain.Product{}, all[start:end]...),
		"pagination": domain.PageInfo{
			TotalPages:  totalPages,
			CurrentPage: page,
			HasPre:      page > 1,
			HasNext:     page < totalPages,
			Category:    category,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
