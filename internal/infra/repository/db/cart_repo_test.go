package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CartRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	dao  *DbDao
	repo *CartRepo
	user *UserProfileRepo
}

func TestCartRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CartRepoTestSuite))
}

func (suite *CartRepoTestSuite) SetupTest() {
	gdb, mock := newMockGorm(suite.T())
	suite.mock = mock
	suite.dao = NewDbDao(gdb)
	suite.repo = NewCartRepo(suite.dao)
	suite.user = NewUserProfileRepo(suite.dao)
}

func (suite *CartRepoTestSuite) TearDownTest() {
	require.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *CartRepoTestSuite) TestGetCartForCheckout_LocksCartInTransaction() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT \* FROM "user_profiles" WHERE user_profile_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_profile_id", "user_name", "cart_id"}).AddRow(1, "royce", 10))
	suite.mock.ExpectQuery(`SELECT \* FROM "carts" WHERE cart_id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(10))
	suite.mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1 ORDER BY cart_item_id ASC`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"cart_item_id", "cart_id", "product_id", "quantity"}).
			AddRow(1, 10, 9, 1).
			AddRow(2, 10, 3, 2))
	suite.mock.ExpectCommit()

	var cart *model.Cart
	err := suite.dao.WithinTx(context.Background(), func(ctx context.Context) error {
		var err error
		cart, err = suite.repo.GetCartForCheckout(ctx, 1)
		return err
	})

	require.NoError(suite.T(), err)
	require.Equal(suite.T(), uint(10), cart.CartID)
	require.Len(suite.T(), cart.CartItems, 2)
	require.Equal(suite.T(), uint(9), cart.CartItems[0].ProductID)
}

func (suite *CartRepoTestSuite) TestGetCartForCheckout_NoCartAttached() {
	suite.mock.ExpectQuery(`SELECT \* FROM "user_profiles" WHERE user_profile_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_profile_id", "user_name", "cart_id"}).AddRow(1, "royce", nil))

	_, err := suite.repo.GetCartForCheckout(context.Background(), 1)
	require.ErrorIs(suite.T(), err, ErrCartNotFound)
}

func (suite *CartRepoTestSuite) TestGetCartForCheckout_UnknownUser() {
	suite.mock.ExpectQuery(`SELECT \* FROM "user_profiles" WHERE user_profile_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_profile_id", "user_name", "cart_id"}))

	_, err := suite.repo.GetCartForCheckout(context.Background(), 99)
	require.ErrorIs(suite.T(), err, ErrCartNotFound)
}

func (suite *CartRepoTestSuite) TestDeleteCartItems() {
	suite.mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1`).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(suite.T(), suite.repo.DeleteCartItems(context.Background(), 10))
}

func (suite *CartRepoTestSuite) TestDetachCart() {
	suite.mock.ExpectExec(`UPDATE "user_profiles" SET "cart_id"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(suite.T(), suite.user.DetachCart(context.Background(), 1))
}

func (suite *CartRepoTestSuite) TestDetachCart_UnknownUser() {
	suite.mock.ExpectExec(`UPDATE "user_profiles" SET "cart_id"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(suite.T(), suite.user.DetachCart(context.Background(), 7), ErrUserProfileNotFound)
}
