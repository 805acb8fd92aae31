package adminapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/bytes"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/storefront"
	"github.com/talkincode/hexshop/internal/webserver"
)

const (
	productsPath = "/admin/products"
	formPath     = "/admin/products/form"
	maxUpload    = 3 << 20
)

// formFields are the draft fields accepted from the edit form post.
var formFields = []string{
	"title", "category", "unit", "origin_price", "price", "description", "is_enabled", "imageUrl",
	"material_contents", "notes", "origin", "shelf_life",
}

// registerProductRoutes registers the admin product console
func registerProductRoutes() {
	webserver.AdminGET("/products", listProducts)
	webserver.AdminGET("/products/new", newProduct)
	webserver.AdminGET("/products/:id/edit", editProduct)
	webserver.AdminGET("/products/form", showForm)
	webserver.AdminPOST("/products/form", updateForm)
	webserver.AdminPOST("/products/form/images", updateImages)
	webserver.AdminPOST("/products/form/upload", uploadImage)
	webserver.AdminPOST("/products/form/confirm", confirmForm)
	webserver.AdminPOST("/products/form/cancel", cancelForm)
	webserver.AdminGET("/products/:id/delete", deletePrompt)
	webserver.AdminPOST("/products/delete/confirm", confirmDelete)
	webserver.AdminPOST("/products/delete/cancel", cancelDelete)
	webserver.AdminGET("/products/events", productEvents)
}

// listProducts checks the session on first use, then shows the requested
// page. A failed check ends on the login page without fetching products.
func listProducts(c echo.Context) error {
	ws := workspace(c)
	sess := webserver.ShopSession(c)
	ctx := c.Request().Context()
	page := parsePage(c)

	fetch := true
	if !ws.Products.Mounted() {
		if err := ws.Products.Mount(ctx, sess); err != nil {
			if unauthorized(err) {
				return toLogin(c, ws, err)
			}
			return alert(c, "/", "failed to load products", err)
		}
		fetch = page != 1
	}
	if fetch {
		if err := ws.Products.FetchPage(ctx, sess, page); err != nil {
			if unauthorized(err) {
				return toLogin(c, ws, err)
			}
			webserver.AddFlash(c, webserver.FlashError, "failed to load products")
		}
	}
	return webserver.Render(c, http.StatusOK, "admin_products.html", echo.Map{
		"Page": ws.Products.Snapshot(),
	})
}

func newProduct(c echo.Context) error {
	workspace(c).Products.OpenCreate()
	return c.Redirect(http.StatusSeeOther, formPath)
}

func editProduct(c echo.Context) error {
	ws := workspace(c)
	p, ok := ws.Products.Lookup(c.Param("id"))
	if !ok {
		return alert(c, productsPath, "product not found on the current page", nil)
	}
	ws.Products.OpenEdit(p)
	return c.Redirect(http.StatusSeeOther, formPath)
}

func showForm(c echo.Context) error {
	st := workspace(c).Products.Form().Snapshot()
	if !st.Open {
		return c.Redirect(http.StatusSeeOther, productsPath)
	}
	return webserver.Render(c, http.StatusOK, "admin_product_form.html", echo.Map{
		"Form": st,
	})
}

// applyPosted merges the posted draft fields and image slots into the
// open form. Every button of the edit form posts all of them, so no typed
// edit is lost whichever one is pressed.
func applyPosted(c echo.Context, form *storefront.ProductForm) error {
	params, err := c.FormParams()
	if err != nil {
		return fmt.Errorf("read form: %w", err)
	}
	fields := make(map[string]interface{})
	for _, name := range formFields {
		if vs, ok := params[name]; ok && len(vs) > 0 {
			fields[name] = vs[len(vs)-1]
		}
	}
	if len(fields) > 0 {
		if err := form.ApplyFields(fields); err != nil {
			return err
		}
	}
	for i := range form.Snapshot().Draft.ImagesURL {
		vs, ok := params["image_"+strconv.Itoa(i)]
		if !ok || len(vs) == 0 {
			continue
		}
		if err := form.SetImage(i, strings.TrimSpace(vs[len(vs)-1])); err != nil {
			return err
		}
	}
	return nil
}

func updateForm(c echo.Context) error {
	form := workspace(c).Products.Form()
	if !form.Snapshot().Open {
		return formError(c, storefront.ErrFormClosed)
	}
	if err := applyPosted(c, form); err != nil {
		return formError(c, err)
	}
	return c.Redirect(http.StatusSeeOther, formPath)
}

func updateImages(c echo.Context) error {
	form := workspace(c).Products.Form()
	if !form.Snapshot().Open {
		return formError(c, storefront.ErrFormClosed)
	}
	if err := applyPosted(c, form); err != nil {
		return formError(c, err)
	}
	switch c.FormValue("action") {
	case "add":
		if !form.AddImage() {
			webserver.AddFlash(c, webserver.FlashError, fmt.Sprintf("fill the last image first, at most %d images", storefront.MaxImages))
		}
	case "remove":
		if !form.RemoveImage() {
			webserver.AddFlash(c, webserver.FlashError, "at least one image slot is kept")
		}
	}
	return c.Redirect(http.StatusSeeOther, formPath)
}

func uploadImage(c echo.Context) error {
	ws := workspace(c)
	fh, err := c.FormFile("file-to-upload")
	if err != nil {
		return alert(c, formPath, "choose a file to upload", err)
	}
	if fh.Size > maxUpload {
		return alert(c, formPath, "file is larger than "+bytes.Format(maxUpload), nil)
	}
	f, err := fh.Open()
	if err != nil {
		return alert(c, formPath, "upload failed", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return alert(c, formPath, "upload failed", err)
	}

	url, err := ws.Products.Form().Upload(c.Request().Context(), webserver.ShopSession(c), fh.Filename, data)
	if err != nil {
		if errors.Is(err, storefront.ErrFormClosed) {
			return formError(c, err)
		}
		if unauthorized(err) {
			return toLogin(c, ws, err)
		}
		return alert(c, formPath, "upload failed", err)
	}
	zap.L().Info("image uploaded",
		zap.String("filename", fh.Filename),
		zap.String("size", bytes.Format(int64(len(data)))),
		zap.String("url", url),
	)
	return notice(c, formPath, "image uploaded")
}

// confirmForm applies the fields posted with the Confirm button, then
// submits the draft.
func confirmForm(c echo.Context) error {
	ws := workspace(c)
	form := ws.Products.Form()
	if !form.Snapshot().Open {
		return formError(c, storefront.ErrFormClosed)
	}
	if err := applyPosted(c, form); err != nil {
		return formError(c, err)
	}
	err := form.Confirm(c.Request().Context(), webserver.ShopSession(c))
	switch {
	case err == nil:
		return notice(c, productsPath+"?page="+strconv.Itoa(ws.Products.CurrentPage()), "product saved")
	case errors.Is(err, storefront.ErrReloadFailed):
		return alert(c, productsPath, "product saved but the list could not be reloaded", err)
	case unauthorized(err):
		return toLogin(c, ws, err)
	default:
		return formError(c, err)
	}
}

func cancelForm(c echo.Context) error {
	workspace(c).Products.Form().Cancel()
	return c.Redirect(http.StatusSeeOther, productsPath)
}

func deletePrompt(c echo.Context) error {
	ws := workspace(c)
	p, ok := ws.Products.Lookup(c.Param("id"))
	if !ok {
		return alert(c, productsPath, "product not found on the current page", nil)
	}
	ws.Products.OpenDelete(p)
	return webserver.Render(c, http.StatusOK, "admin_product_delete.html", echo.Map{
		"Target": p,
	})
}

func confirmDelete(c echo.Context) error {
	ws := workspace(c)
	err := ws.Products.ConfirmDelete(c.Request().Context(), webserver.ShopSession(c))
	switch {
	case err == nil:
		return notice(c, productsPath+"?page="+strconv.Itoa(ws.Products.CurrentPage()), "product deleted")
	case errors.Is(err, storefront.ErrNoDeleteTarget):
		return alert(c, productsPath, "no product selected", nil)
	case errors.Is(err, storefront.ErrReloadFailed):
		return alert(c, productsPath, "product deleted but the list could not be reloaded", err)
	case unauthorized(err):
		return toLogin(c, ws, err)
	default:
		return alert(c, productsPath, "delete failed", err)
	}
}

func cancelDelete(c echo.Context) error {
	workspace(c).Products.CancelDelete()
	return c.Redirect(http.StatusSeeOther, productsPath)
}

type productEvent struct {
	Page domain.ProductPage    `json:"page"`
	Form storefront.FormState `json:"form"`
	Busy bool                 `json:"busy"`
}

// productEvents streams the admin list, the edit form and the busy state.
func productEvents(c echo.Context) error {
	ws := workspace(c)
	return webserver.StreamEvents(c, "products", func() interface{} {
		return productEvent{
			Page: ws.Products.Snapshot(),
			Form: ws.Products.Form().Snapshot(),
			Busy: ws.Busy.Active(),
		}
	},
		webserver.Watch(ws.Products.Store()),
		webserver.Watch(ws.Products.Form().Store()),
		webserver.Watch(ws.Busy.Store()),
	)
}

func formError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storefront.ErrFormClosed):
		return alert(c, productsPath, "the product form is closed", nil)
	case errors.Is(err, storefront.ErrInvalidField):
		return alert(c, formPath, err.Error(), nil)
	default:
		return alert(c, formPath, "save failed", err)
	}
}
