package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/bytes"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/webserver"
)

// productRow is one exported CSV line.
type productRow struct {
	ID               string  `csv:"id"`
	Title            string  `csv:"title"`
	Category         string  `csv:"category"`
	Unit             string  `csv:"unit"`
	OriginPrice      float64 `csv:"origin_price"`
	Price            float64 `csv:"price"`
	Enabled          int     `csv:"is_enabled"`
	ImageURL         string  `csv:"image_url"`
	ImagesURL        string  `csv:"images_url"`
	Description      string  `csv:"description"`
	MaterialContents string  `csv:"material_contents"`
	Notes            string  `csv:"notes"`
	Origin           string  `csv:"origin"`
	ShelfLife        string  `csv:"shelf_life"`
}

func newProductRow(p domain.Product) productRow {
	return productRow{
		ID:               p.ID,
		Title:            p.Title,
		Category:         p.Category,
		Unit:             p.Unit,
		OriginPrice:      p.OriginPrice,
		Price:            p.Price,
		Enabled:          p.IsEnabled,
		ImageURL:         p.ImageURL,
		ImagesURL:        strings.Join(p.ImagesURL, " "),
		Description:      p.Description,
		MaterialContents: p.Content.MaterialContents,
		Notes:            p.Content.Notes,
		Origin:           p.Content.Origin,
		ShelfLife:        p.Content.ShelfLife,
	}
}

func registerExportRoutes() {
	webserver.AdminGET("/products/export.csv", exportProducts)
}

// exportProducts downloads one admin product page as CSV. It reads the
// remote API directly and leaves the workspace list untouched.
func exportProducts(c echo.Context) error {
	page := parsePage(c)
	pp, err := GetAppContext(c).ShopAPI().AdminProducts(c.Request().Context(), webserver.ShopSession(c), page)
	if err != nil {
		if unauthorized(err) {
			return toLogin(c, workspace(c), err)
		}
		return alert(c, productsPath, "export failed", err)
	}

	rows := make([]productRow, 0, len(pp.Products))
	for _, p := range pp.Products {
		rows = append(rows, newProductRow(p))
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return alert(c, productsPath, "export failed", err)
	}
	zap.L().Info("products exported",
		zap.Int("page", page),
		zap.Int("rows", len(rows)),
		zap.String("size", bytes.Format(int64(len(data)))),
	)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=products-page-%d.csv", page))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
