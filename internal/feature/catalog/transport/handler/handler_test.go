package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/usecase"
	"storefront/internal/platform/storage"
	"storefront/internal/platform/validation"
	"storefront/internal/platform/web"
	"storefront/internal/platform/web/webtest"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	v, err := validation.New()
	if err != nil {
		panic(err)
	}
	binding.Validator = v
	os.Exit(m.Run())
}

type mockCatalog struct {
	ListPageFunc  func(ctx context.Context, page int) ([]entity.Product, entity.Pagination, error)
	GetFunc       func(ctx context.Context, id uint) (*entity.Product, error)
	ListOwnedFunc func(ctx context.Context, userID uint) ([]entity.Product, error)
	GetOwnedFunc  func(ctx context.Context, userID, id uint) (*entity.Product, error)
	CreateFunc    func(ctx context.Context, userID uint, in usecase.ProductInput) (*entity.Product, error)
	UpdateFunc    func(ctx context.Context, userID, id uint, in usecase.ProductInput) error
	DeleteFunc    func(ctx context.Context, userID, id uint) error
}

func (m *mockCatalog) ListPage(ctx context.Context, page int) ([]entity.Product, entity.Pagination, error) {
	return m.ListPageFunc(ctx, page)
}

func (m *mockCatalog) Get(ctx context.Context, id uint) (*entity.Product, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockCatalog) ListOwned(ctx context.Context, userID uint) ([]entity.Product, error) {
	return m.ListOwnedFunc(ctx, userID)
}

func (m *mockCatalog) GetOwned(ctx context.Context, userID, id uint) (*entity.Product, error) {
	return m.GetOwnedFunc(ctx, userID, id)
}

func (m *mockCatalog) Create(ctx context.Context, userID uint, in usecase.ProductInput) (*entity.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, in)
	}
	return &entity.Product{ID: 1, UserID: userID}, nil
}

func (m *mockCatalog) Update(ctx context.Context, userID, id uint, in usecase.ProductInput) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, id, in)
	}
	return nil
}

func (m *mockCatalog) Delete(ctx context.Context, userID, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

type mockImages struct {
	SaveFunc func(fh *multipart.FileHeader) (string, error)
	deleted  []string
}

func (m *mockImages) Save(fh *multipart.FileHeader) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(fh)
	}
	return "/images/abc-" + fh.Filename, nil
}

func (m *mockImages) Delete(url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

const viewerID = 7

func setupRouter(catalog *mockCatalog, images *mockImages) (*gin.Engine, *webtest.Renderer) {
	r := gin.New()
	rec := &webtest.Renderer{}
	r.HTMLRender = rec
	r.Use(web.ErrorHandler(), func(c *gin.Context) {
		web.SetViewer(c, web.Viewer{ID: viewerID, Name: "Ann"})
	})

	shop := NewShopHandler(catalog)
	r.GET("/", shop.GetIndex)
	r.GET("/products/:productId", shop.GetProduct)

	admin := NewAdminHandler(catalog, images)
	r.GET("/admin/products", admin.GetProducts)
	r.POST("/admin/add-product", admin.PostAddProduct)
	r.GET("/admin/edit-product/:productId", admin.GetEditProduct)
	r.POST("/admin/edit-product", admin.PostEditProduct)
	r.DELETE("/admin/product/:productId", admin.DeleteProduct)
	return r, rec
}

// multipartForm builds a multipart body; an empty fileName leaves out the image part.
func multipartForm(t *testing.T, fields map[string]string, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func do(r http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestShopHandler_GetIndex(t *testing.T) {
	var gotPage int
	catalog := &mockCatalog{
		ListPageFunc: func(ctx context.Context, page int) ([]entity.Product, entity.Pagination, error) {
			gotPage = page
			return []entity.Product{{ID: 4}, {ID: 5}, {ID: 6}}, entity.NewPagination(page, 3, 7), nil
		},
	}
	r, rec := setupRouter(catalog, &mockImages{})

	w := do(r, http.MethodGet, "/?page=2", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gotPage)
	name, data := rec.Last()
	assert.Equal(t, "shop/index.html", name)
	assert.Len(t, data["prods"], 3)
	assert.Equal(t, true, data["hasNextPage"])
	assert.Equal(t, true, data["hasPreviousPage"])
	assert.Equal(t, 3, data["lastPage"])

	do(r, http.MethodGet, "/?page=abc", nil, "")
	assert.Equal(t, 1, gotPage)

	catalog.ListPageFunc = func(ctx context.Context, page int) ([]entity.Product, entity.Pagination, error) {
		return nil, entity.Pagination{}, errors.New("db down")
	}
	w = do(r, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestShopHandler_GetProduct(t *testing.T) {
	catalog := &mockCatalog{
		GetFunc: func(ctx context.Context, id uint) (*entity.Product, error) {
			if id == 3 {
				return &entity.Product{ID: 3, Title: "Lamp"}, nil
			}
			return nil, usecase.ErrProductNotFound
		},
	}
	r, rec := setupRouter(catalog, &mockImages{})

	tests := []struct {
		path string
		want int
	}{
		{path: "/products/3", want: http.StatusOK},
		{path: "/products/9", want: http.StatusNotFound},
		{path: "/products/lamp", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, nil, "")
			assert.Equal(t, tt.want, w.Code)
		})
	}

	do(r, http.MethodGet, "/products/3", nil, "")
	name, data := rec.Last()
	assert.Equal(t, "shop/product-detail.html", name)
	assert.Equal(t, "Lamp", data["pageTitle"])
}

func TestAdminHandler_GetProducts(t *testing.T) {
	catalog := &mockCatalog{
		ListOwnedFunc: func(ctx context.Context, userID uint) ([]entity.Product, error) {
			assert.Equal(t, uint(viewerID), userID)
			return []entity.Product{{ID: 1, UserID: viewerID}}, nil
		},
	}
	r, rec := setupRouter(catalog, &mockImages{})

	w := do(r, http.MethodGet, "/admin/products", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	name, data := rec.Last()
	assert.Equal(t, "admin/products.html", name)
	assert.Len(t, data["prods"], 1)
}

func TestAdminHandler_PostAddProduct(t *testing.T) {
	valid := map[string]string{"title": " Desk Lamp ", "price": "12.5", "description": "A bright lamp"}

	tests := []struct {
		name       string
		fields     map[string]string
		fileName   string
		saveErr    error
		wantCode   int
		wantError  string
		wantCreate bool
	}{
		{name: "success", fields: valid, fileName: "lamp.png", wantCode: http.StatusFound, wantCreate: true},
		{name: "missing image", fields: valid, wantCode: http.StatusUnprocessableEntity, wantError: notImageMessage},
		{name: "not an image", fields: valid, fileName: "notes.txt", saveErr: storage.ErrNotImage, wantCode: http.StatusUnprocessableEntity, wantError: notImageMessage},
		{
			name:      "price below one",
			fields:    map[string]string{"title": "Desk Lamp", "price": "0.5", "description": "A bright lamp"},
			fileName:  "lamp.png",
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "Price must be a number of at least 1.",
		},
		{
			name:      "short title after trim",
			fields:    map[string]string{"title": "  ab ", "price": "3", "description": "A bright lamp"},
			fileName:  "lamp.png",
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "Title must have min 3 characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *usecase.ProductInput
			catalog := &mockCatalog{
				CreateFunc: func(ctx context.Context, userID uint, in usecase.ProductInput) (*entity.Product, error) {
					created = &in
					return &entity.Product{ID: 1, UserID: userID}, nil
				},
			}
			images := &mockImages{}
			if tt.saveErr != nil {
				images.SaveFunc = func(fh *multipart.FileHeader) (string, error) { return "", tt.saveErr }
			}
			r, rec := setupRouter(catalog, images)

			body, ct := multipartForm(t, tt.fields, tt.fileName)
			w := do(r, http.MethodPost, "/admin/add-product", body, ct)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCreate {
				require.NotNil(t, created)
				assert.Equal(t, "/admin/products", w.Header().Get("Location"))
				assert.Equal(t, "Desk Lamp", created.Title)
				assert.True(t, decimal.RequireFromString("12.5").Equal(created.Price))
				assert.Equal(t, "/images/abc-lamp.png", created.ImageURL)
				return
			}
			assert.Nil(t, created)
			name, data := rec.Last()
			assert.Equal(t, "admin/edit-product.html", name)
			assert.Equal(t, tt.wantError, data["errorMessage"])
			assert.Equal(t, false, data["editing"])
		})
	}
}

func TestAdminHandler_PostAddProduct_CreateFailsDiscardsImage(t *testing.T) {
	catalog := &mockCatalog{
		CreateFunc: func(ctx context.Context, userID uint, in usecase.ProductInput) (*entity.Product, error) {
			return nil, errors.New("db down")
		},
	}
	images := &mockImages{}
	r, _ := setupRouter(catalog, images)

	body, ct := multipartForm(t, map[string]string{"title": "Desk Lamp", "price": "2", "description": "A bright lamp"}, "lamp.png")
	w := do(r, http.MethodPost, "/admin/add-product", body, ct)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, []string{"/images/abc-lamp.png"}, images.deleted)
}

func TestAdminHandler_GetEditProduct(t *testing.T) {
	catalog := &mockCatalog{
		GetOwnedFunc: func(ctx context.Context, userID, id uint) (*entity.Product, error) {
			switch id {
			case 1:
				return &entity.Product{ID: 1, Title: "Lamp", Price: decimal.NewFromInt(3), UserID: userID}, nil
			case 2:
				return nil, usecase.ErrNotProductOwner
			}
			return nil, usecase.ErrProductNotFound
		},
	}
	r, rec := setupRouter(catalog, &mockImages{})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantLoc  string
	}{
		{name: "owner in edit mode", path: "/admin/edit-product/1?edit=true", wantCode: http.StatusOK},
		{name: "edit flag missing", path: "/admin/edit-product/1", wantCode: http.StatusFound, wantLoc: "/"},
		{name: "another user's product", path: "/admin/edit-product/2?edit=true", wantCode: http.StatusFound, wantLoc: "/"},
		{name: "unknown product", path: "/admin/edit-product/9?edit=true", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, nil, "")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
		})
	}

	do(r, http.MethodGet, "/admin/edit-product/1?edit=true", nil, "")
	name, data := rec.Last()
	assert.Equal(t, "admin/edit-product.html", name)
	assert.Equal(t, true, data["editing"])
	assert.Equal(t, productForm{ID: 1, Title: "Lamp", Price: "3.00"}, data["product"])
}

func TestAdminHandler_PostEditProduct(t *testing.T) {
	fields := map[string]string{"productId": "1", "title": "Lamp v2", "price": "4", "description": "Even brighter"}

	tests := []struct {
		name        string
		fields      map[string]string
		fileName    string
		updateErr   error
		wantCode    int
		wantLoc     string
		wantImage   string
		wantDeleted []string
	}{
		{name: "keeps image", fields: fields, wantCode: http.StatusFound, wantLoc: "/admin/products"},
		{name: "replaces image", fields: fields, fileName: "new.png", wantCode: http.StatusFound, wantLoc: "/admin/products", wantImage: "/images/abc-new.png"},
		{
			name: "another user's product", fields: fields, fileName: "new.png", updateErr: usecase.ErrNotProductOwner,
			wantCode: http.StatusFound, wantLoc: "/", wantImage: "/images/abc-new.png", wantDeleted: []string{"/images/abc-new.png"},
		},
		{name: "unknown product", fields: fields, updateErr: usecase.ErrProductNotFound, wantCode: http.StatusNotFound},
		{
			name:     "invalid description",
			fields:   map[string]string{"productId": "1", "title": "Lamp v2", "price": "4", "description": "dim"},
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *usecase.ProductInput
			catalog := &mockCatalog{
				UpdateFunc: func(ctx context.Context, userID, id uint, in usecase.ProductInput) error {
					assert.Equal(t, uint(1), id)
					got = &in
					return tt.updateErr
				},
			}
			images := &mockImages{}
			r, rec := setupRouter(catalog, images)

			body, ct := multipartForm(t, tt.fields, tt.fileName)
			w := do(r, http.MethodPost, "/admin/edit-product", body, ct)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
			assert.Equal(t, tt.wantDeleted, images.deleted)
			if tt.wantCode == http.StatusUnprocessableEntity {
				assert.Nil(t, got)
				_, data := rec.Last()
				assert.Equal(t, "Description must have 5 to 500 characters.", data["errorMessage"])
				assert.Equal(t, uint(1), data["product"].(productForm).ID)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantImage, got.ImageURL)
		})
	}
}

func TestAdminHandler_DeleteProduct(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "success", path: "/admin/product/1", wantCode: http.StatusOK, wantBody: `{"message":"Success"}`},
		{name: "not owner", path: "/admin/product/1", err: usecase.ErrNotProductOwner, wantCode: http.StatusInternalServerError, wantBody: `{"message":"Failed"}`},
		{name: "bad id", path: "/admin/product/x", wantCode: http.StatusInternalServerError, wantBody: `{"message":"Failed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &mockCatalog{
				DeleteFunc: func(ctx context.Context, userID, id uint) error {
					assert.Equal(t, uint(viewerID), userID)
					return tt.err
				},
			}
			r, _ := setupRouter(catalog, &mockImages{})

			w := do(r, http.MethodDelete, tt.path, nil, "")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
