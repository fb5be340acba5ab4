package catalog

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/angelmondragon/shopadmin/internal/crud"
	"github.com/angelmondragon/shopadmin/internal/repo"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"gorm.io/gorm"
)

type ProductService = crud.Service[models.Product, resources.Product, resources.ProductInput]

// ImageStore persists product images and returns the public URL.
type ImageStore interface {
	Save(ctx context.Context, productID int64, file *transport.File) (string, error)
}

// NewProductService wires product CRUD. images may be nil, in which case
// attached images are rejected.
func NewProductService(db *gorm.DB, images ImageStore) (*ProductService, error) {
	return crud.New(db, "Product", repo.ListSpec{
		SearchColumns: []string{"name", "unique_number"},
		SortColumns: map[string]string{
			"id":            "id",
			"name":          "name",
			"quantity":      "quantity",
			"purchasePrice": "purchase_price",
			"sellingPrice":  "selling_price",
			"uniqueNumber":  "unique_number",
			"categoryId":    "category_id",
		},
		DefaultSort: "id",
		Preloads:    []string{"Category"},
	}, crud.Hooks[models.Product, resources.Product, resources.ProductInput]{
		ID:       func(m models.Product) int64 { return m.ID },
		ToEntity: ProductFromModel,
		Apply: func(ctx context.Context, tx *gorm.DB, in resources.ProductInput, m *models.Product) error {
			var count int64
			if err := tx.WithContext(ctx).Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown category").
					WithMessages(fmt.Sprintf("Category %d does not exist", in.CategoryID))
			}
			m.Name = strings.TrimSpace(in.Name)
			m.Quantity = in.Quantity
			m.IsStock = in.IsStock
			m.PurchasePrice = in.PurchasePrice
			m.SellingPrice = in.SellingPrice
			m.CategoryID = in.CategoryID
			m.UniqueNumber = strings.TrimSpace(in.UniqueNumber)
			m.Category = nil
			return nil
		},
		AfterSave: func(ctx context.Context, tx *gorm.DB, in resources.ProductInput, m *models.Product) error {
			if in.Image == nil {
				return nil
			}
			if images == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "images disabled").WithMessages("Image uploads are not enabled")
			}
			url, err := images.Save(ctx, m.ID, in.Image)
			if err != nil {
				if pkgerrors.As(err) != nil {
					return err
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product image")
			}
			m.ImageURL = url
			return tx.WithContext(ctx).Model(&models.Product{}).Where("id = ?", m.ID).UpdateColumn("image_url", url).Error
		},
		BeforeDelete: func(ctx context.Context, tx *gorm.DB, ids []int64) error {
			return refuseWhenReferenced(ctx, tx, &models.OrderItem{}, "product_id", ids, "Product appears on existing orders")
		},
	})
}

func ProductFromModel(m models.Product) resources.Product {
	p := resources.Product{
		ID:            m.ID,
		Name:          m.Name,
		Quantity:      m.Quantity,
		IsStock:       m.IsStock,
		PurchasePrice: m.PurchasePrice,
		SellingPrice:  m.SellingPrice,
		CategoryID:    m.CategoryID,
		UniqueNumber:  m.UniqueNumber,
		ImageURL:      m.ImageURL,
	}
	if m.Category != nil {
		p.Category = &resources.CategoryRef{ID: m.Category.ID, Name: m.Category.Name}
	}
	return p
}

// DiskImages writes product images under Dir and serves them below URLPrefix.
type DiskImages struct {
	Dir       string
	URLPrefix string
}

var allowedImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

func (d DiskImages) Save(_ context.Context, productID int64, file *transport.File) (string, error) {
	if file == nil || len(file.Content) == 0 {
		return "", fmt.Errorf("empty image")
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	if !allowedImageExt[ext] {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type").
			WithMessages("Image must be a png, jpg, gif or webp file")
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	name := "product-" + strconv.FormatInt(productID, 10) + ext
	if err := os.WriteFile(filepath.Join(d.Dir, name), file.Content, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path.Join("/", d.URLPrefix, name), nil
}
