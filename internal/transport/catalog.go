package transport

import (
	"net/http"

	"ordermgmt-be/internal/catalog"
	"ordermgmt-be/internal/utils"

	"github.com/labstack/echo/v4"
)

type categoriesResponse struct {
	envelope
	Categories []*catalog.Category `json:"categories"`
}

type productsResponse struct {
	envelope
	Products []*catalog.Product `json:"products"`
}

// GetActiveCategories handles GET /api/inventory/getactivecategories.
func (s *Server) GetActiveCategories(c echo.Context) error {
	categories, err := s.catalog.GetActiveCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, categoriesResponse{
		envelope:   success(""),
		Categories: categories,
	})
}

// GetProductsByCategory handles GET /api/inventory/getproductsbycategory.
// Without ?categoryid= every product is returned.
func (s *Server) GetProductsByCategory(c echo.Context) error {
	categoryID, err := utils.OptionalInt64(c.QueryParam("categoryid"))
	if err != nil {
		return badRequest(c, "Invalid category id")
	}

	products, err := s.catalog.GetProductsByCategory(c.Request().Context(), categoryID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, productsResponse{
		envelope: success(""),
		Products: products,
	})
}
