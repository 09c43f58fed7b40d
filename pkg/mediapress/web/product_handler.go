// Package web provides the server-rendered product pages. Forms post
// multipart data, successful mutations redirect back to the index with a
// flash message, and validation failures re-render the form with the field
// errors and the submitted values.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	flashCookie     = "flash"
	maxUploadMemory = 8 << 20
)

var pageTemplates = map[string]*template.Template{
	"index":  parsePage("index.html"),
	"create": parsePage("create.html"),
	"show":   parsePage("show.html"),
	"edit":   parsePage("edit.html"),
}

func parsePage(page string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(template.FuncMap{
		"imageURL": func(name string) string {
			return "/storage/" + mediapress.NamespaceProducts + "/" + url.PathEscape(name)
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}).ParseFS(templateFS, "templates/layout.html", "templates/"+page))
}

// viewData is the render context shared by all product pages.
type viewData struct {
	Title   string
	Flash   string
	Errors  map[string][]string
	Old     map[string]string
	Product *mediapress.Product
	Page    *mediapress.ProductPage
}

// ProductHandler handles the server-rendered product pages.
type ProductHandler struct {
	service mediapress.Service
}

// NewProductHandler creates a new product page handler
func NewProductHandler(service mediapress.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// Routes returns the routes for the product pages
func (h *ProductHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Index)
	r.Get("/create", h.CreateForm)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/delete", h.Delete)

	return r
}

// Index renders one page of products, newest first.
func (h *ProductHandler) Index(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := h.service.ListProducts(r.Context(), page)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, "index", http.StatusOK, &viewData{
		Title: "Products",
		Flash: popFlash(w, r),
		Page:  result,
	})
}

// CreateForm renders the empty product form.
func (h *ProductHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "create", http.StatusOK, &viewData{
		Title: "New Product",
		Old:   map[string]string{},
	})
}

// Create handles the product form submission.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "expected a multipart form", http.StatusBadRequest)
		return
	}

	image, err := formImage(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	_, err = h.service.CreateProduct(r.Context(), mediapress.CreateProductRequest{
		Title: r.FormValue("title"),
		Desc:  r.FormValue("desc"),
		Price: r.FormValue("price"),
		Stock: r.FormValue("stock"),
		Image: image,
	})
	if err != nil {
		if ve, ok := mediapress.AsValidationError(err); ok {
			h.render(w, "create", http.StatusUnprocessableEntity, &viewData{
				Title:  "New Product",
				Errors: ve.Fields,
				Old:    formValues(r),
			})
			return
		}
		h.renderError(w, r, err)
		return
	}

	redirectWithFlash(w, r, "/products", "Product created successfully.")
}

// Show renders one product's detail page.
func (h *ProductHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, "show", http.StatusOK, &viewData{
		Title:   product.Title,
		Product: product,
	})
}

// EditForm renders the product form pre-filled with the current values.
func (h *ProductHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, "edit", http.StatusOK, &viewData{
		Title:   "Edit Product",
		Product: product,
		Old: map[string]string{
			"title": product.Title,
			"desc":  product.Desc,
			"price": strconv.FormatFloat(product.Price, 'f', -1, 64),
			"stock": strconv.Itoa(product.Stock),
		},
	})
}

// Update handles the edit form submission; the image field is optional.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "expected a multipart form", http.StatusBadRequest)
		return
	}

	image, err := formImage(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	_, err = h.service.UpdateProduct(r.Context(), id, mediapress.UpdateProductRequest{
		Title: r.FormValue("title"),
		Desc:  r.FormValue("desc"),
		Price: r.FormValue("price"),
		Stock: r.FormValue("stock"),
		Image: image,
	})
	if err != nil {
		if ve, ok := mediapress.AsValidationError(err); ok {
			h.render(w, "edit", http.StatusUnprocessableEntity, &viewData{
				Title:   "Edit Product",
				Errors:  ve.Fields,
				Old:     formValues(r),
				Product: &mediapress.Product{ID: id},
			})
			return
		}
		h.renderError(w, r, err)
		return
	}

	redirectWithFlash(w, r, "/products", "Product updated successfully.")
}

// Delete removes a product and its image.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if _, err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}

	redirectWithFlash(w, r, "/products", "Product deleted successfully.")
}

func (h *ProductHandler) render(w http.ResponseWriter, page string, status int, data *viewData) {
	tmpl, ok := pageTemplates[page]
	if !ok {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("render page failed", "page", page, "error", err)
	}
}

func (h *ProductHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if mediapress.IsNotFound(err) {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	slog.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// productID resolves the id route parameter. A malformed id cannot name a
// live record, so it maps to not-found.
func productID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, mediapress.ErrProductNotFound
	}
	return id, nil
}

// formImage extracts the optional "image" multipart file, bounded slightly
// above the validation ceiling so oversized uploads still produce a field
// error rather than a transport error.
func formImage(r *http.Request) (*mediapress.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read image part: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, mediapress.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image part: %w", err)
	}

	return &mediapress.ImageUpload{
		FileName: header.Filename,
		Data:     data,
	}, nil
}

func formValues(r *http.Request) map[string]string {
	return map[string]string{
		"title": r.FormValue("title"),
		"desc":  r.FormValue("desc"),
		"price": r.FormValue("price"),
		"stock": r.FormValue("stock"),
	}
}

// redirectWithFlash sets the one-shot flash cookie and redirects with 303 so
// the follow-up request is a GET.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, location, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/products",
		HttpOnly: true,
	})
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// popFlash reads and clears the flash cookie.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/products",
		MaxAge:   -1,
		HttpOnly: true,
	})

	message, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return message
}
