package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/skincareshop/models"
)

type CatalogTestSuite struct {
	dbSuite
	products  *ProductService
	customers *CustomerService
	staff     *StaffService
	orders    *OrderService
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (s *CatalogTestSuite) SetupTest() {
	s.dbSuite.SetupTest()
	s.products = NewProductService(s.pool, zerolog.Nop())
	s.customers = NewCustomerService(s.pool, zerolog.Nop())
	s.staff = NewStaffService(s.pool, zerolog.Nop(), nil)
	s.orders = NewOrderService(s.pool, zerolog.Nop())
}

func (s *CatalogTestSuite) TestProductCRUD() {
	in, err := ParseProductInput("SPF-1", "Sun Fluid", "12", "18.90", "Sunscreen")
	s.Require().NoError(err)
	in.ImageURL = "sun.png"

	p, err := s.products.Create(s.ctx, in)
	s.Require().NoError(err)
	s.True(p.Price.Equal(dec("18.90")))

	in.Name = "Sun Fluid SPF50"
	in.ImageURL = "sun2.png"
	replaced, err := s.products.Update(s.ctx, p.ID, in)
	s.Require().NoError(err)
	s.Equal("sun.png", replaced)

	in.ImageURL = ""
	replaced, err = s.products.Update(s.ctx, p.ID, in)
	s.Require().NoError(err)
	s.Empty(replaced)

	got, err := s.products.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Sun Fluid SPF50", got.Name)
	s.Equal("sun2.png", got.ImageURL)

	found, err := s.products.List(s.ctx, "spf50")
	s.Require().NoError(err)
	s.Len(found, 1)

	deleted, err := s.products.Delete(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("sun2.png", deleted.ImageURL)

	_, err = s.products.Get(s.ctx, p.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *CatalogTestSuite) TestDeleteReferencedProductRefused() {
	c := s.addCustomer(1, "Chan Dara")
	p := s.addProduct(1, "Night Cream", "30.00")
	order, err := s.orders.Create(s.ctx, OrderInput{CustomerID: c.ID, Items: []LineItemInput{{ProductID: p.ID, Quantity: 1}}})
	s.Require().NoError(err)

	_, err = s.products.Delete(s.ctx, p.ID)
	s.ErrorIs(err, ErrReferenced)

	_, err = s.products.Get(s.ctx, p.ID)
	s.NoError(err)
	s.EqualValues(1, s.countItems(order.ID))

	// once the order is gone the product can go too
	s.Require().NoError(s.orders.Delete(s.ctx, order.ID))
	_, err = s.products.Delete(s.ctx, p.ID)
	s.NoError(err)
}

func (s *CatalogTestSuite) TestDeleteReferencedCustomerRefused() {
	c := s.addCustomer(1, "Chan Dara")
	p := s.addProduct(1, "Night Cream", "30.00")
	_, err := s.orders.Create(s.ctx, OrderInput{CustomerID: c.ID, Items: []LineItemInput{{ProductID: p.ID, Quantity: 1}}})
	s.Require().NoError(err)

	s.ErrorIs(s.customers.Delete(s.ctx, c.ID), ErrReferenced)
	_, err = s.customers.Get(s.ctx, c.ID)
	s.NoError(err)

	free := s.addCustomer(2, "Free Customer")
	s.NoError(s.customers.Delete(s.ctx, free.ID))
	s.ErrorIs(s.customers.Delete(s.ctx, free.ID), ErrNotFound)
}

func (s *CatalogTestSuite) TestCustomerSearchByNameOrPhone() {
	_, err := s.customers.Create(s.ctx, CustomerInput{FullName: "Sokha Lim", Phone: "012 555 111"})
	s.Require().NoError(err)
	_, err = s.customers.Create(s.ctx, CustomerInput{FullName: "Vanna Heng", Phone: "098 777 222"})
	s.Require().NoError(err)

	byName, err := s.customers.List(s.ctx, "sokha")
	s.Require().NoError(err)
	s.Require().Len(byName, 1)
	s.Equal("Sokha Lim", byName[0].FullName)

	byPhone, err := s.customers.List(s.ctx, "777")
	s.Require().NoError(err)
	s.Require().Len(byPhone, 1)
	s.Equal("Vanna Heng", byPhone[0].FullName)

	wildcard, err := s.customers.List(s.ctx, "_")
	s.Require().NoError(err)
	s.Empty(wildcard)

	_, err = s.customers.Create(s.ctx, CustomerInput{FullName: "   "})
	s.ErrorIs(err, ErrValidation)
}

func (s *CatalogTestSuite) TestCustomerUpdate() {
	c, err := s.customers.Create(s.ctx, CustomerInput{FullName: "Old Name"})
	s.Require().NoError(err)

	s.Require().NoError(s.customers.Update(s.ctx, c.ID, CustomerInput{FullName: "New Name", Gender: "Female"}))
	got, err := s.customers.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("New Name", got.FullName)
	s.Equal("Female", got.Gender)

	// saving the form again without changes is not a missing row
	s.Require().NoError(s.customers.Update(s.ctx, c.ID, CustomerInput{FullName: "New Name", Gender: "Female"}))

	s.ErrorIs(s.customers.Update(s.ctx, 999, CustomerInput{FullName: "Ghost"}), ErrNotFound)
}

func (s *CatalogTestSuite) TestStaffLifecycle() {
	m, err := s.staff.Create(s.ctx, StaffInput{FullName: "Reaksmey Pich", Position: "Beauty Advisor", ProfilePicture: "a.jpg"})
	s.Require().NoError(err)
	s.Regexp(`^STF-[0-9A-F]{8}$`, m.Code)

	other, err := s.staff.Create(s.ctx, StaffInput{FullName: "Bopha Keo", Position: "Cashier"})
	s.Require().NoError(err)
	s.NotEqual(m.Code, other.Code)

	list, err := s.staff.List(s.ctx, "advisor")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(m.ID, list[0].ID)

	all, err := s.staff.List(s.ctx, "")
	s.Require().NoError(err)
	s.Equal("Bopha Keo", all[0].FullName)

	replaced, err := s.staff.Update(s.ctx, m.ID, StaffInput{FullName: "Reaksmey Pich", Position: "Manager", ProfilePicture: "b.jpg"})
	s.Require().NoError(err)
	s.Equal("a.jpg", replaced)

	got, err := s.staff.Get(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(m.Code, got.Code)
	s.Equal("Manager", got.Position)

	removed, err := s.staff.Delete(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal("b.jpg", removed.ProfilePicture)

	var count int64
	s.db.Model(&models.Staff{}).Count(&count)
	s.EqualValues(1, count)
}

func TestParseProductInput(t *testing.T) {
	in, err := ParseProductInput(" C1 ", "Cleanser", "", "4.5", "")
	require.NoError(t, err)
	assert.Equal(t, "C1", in.Code)
	assert.Equal(t, 0, in.Qty)

	for _, bad := range [][5]string{
		{"", "Name", "1", "1", ""},
		{"C", "", "1", "1", ""},
		{"C", "Name", "x", "1", ""},
		{"C", "Name", "-1", "1", ""},
		{"C", "Name", "1", "cheap", ""},
		{"C", "Name", "1", "-3", ""},
	} {
		_, err := ParseProductInput(bad[0], bad[1], bad[2], bad[3], bad[4])
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}
