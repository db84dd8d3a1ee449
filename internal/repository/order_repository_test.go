package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenterphai/storefront-api/internal/model"
)

func TestOrderCreateCapturesPrices(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(qOrderProductPrice)).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("9.99"))
	mock.ExpectQuery(regexp.QuoteMeta(qOrderProductPrice)).WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("0.50"))
	mock.ExpectExec(regexp.QuoteMeta(qOrderInsert)).
		WithArgs(uint64(5), sqlmock.AnyArg(), "pending", "1 Main St", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec(regexp.QuoteMeta(qOrderItemInsert)).
		WithArgs(uint64(100), uint64(1), 2, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1000, 1))
	mock.ExpectExec(regexp.QuoteMeta(qOrderItemInsert)).
		WithArgs(uint64(100), uint64(2), 3, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1001, 1))
	mock.ExpectCommit()

	o, err := NewOrderRepo(db).Create(context.Background(), 5, "1 Main St", []OrderLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), o.ID)
	assert.True(t, decimal.RequireFromString("21.48").Equal(o.TotalAmount), o.TotalAmount.String())
	require.Len(t, o.Items, 2)
	assert.True(t, decimal.RequireFromString("9.99").Equal(o.Items[0].PriceAtOrder))
	assert.Equal(t, uint64(1001), o.Items[1].ID)
	assert.Equal(t, model.OrderPending, o.Status)
}

func TestOrderCreateUnknownProductRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(qOrderProductPrice)).WithArgs(uint64(9)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := NewOrderRepo(db).Create(context.Background(), 5, "addr", []OrderLine{{ProductID: 9, Quantity: 1}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderGetByIDLoadsChildren(t *testing.T) {
	now := time.Now()
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(qOrderByID)).WithArgs(uint64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status", "shipping_address", "order_date", "creationtime", "updatetime"}).
			AddRow(100, 5, "21.48", "pending", "1 Main St", now, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(qOrderItems)).WithArgs(uint64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price_at_order", "creationtime", "updatetime"}).
			AddRow(1000, 100, 1, 2, "9.99", now, now).
			AddRow(1001, 100, nil, 3, "0.50", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(qPaymentByOrder)).WithArgs(uint64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "amount", "method", "transaction_id", "status", "payment_date", "creationtime", "updatetime"}).
			AddRow(7, 100, "21.48", "khqr", "tx-1", "completed", now, now, now))

	o, err := NewOrderRepo(db).GetByID(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	require.NotNil(t, o.Items[0].ProductID)
	assert.Nil(t, o.Items[1].ProductID)
	require.Len(t, o.Payments, 1)
	assert.Equal(t, model.MethodKHQR, o.Payments[0].Method)
	require.NotNil(t, o.Payments[0].TransactionID)
	assert.Equal(t, "tx-1", *o.Payments[0].TransactionID)
}

func TestOrderUpdateStatusMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(qOrderByID)).WithArgs(uint64(404)).WillReturnError(sql.ErrNoRows)

	_, err := NewOrderRepo(db).UpdateStatus(context.Background(), 404, model.OrderShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentCreateDuplicateTransaction(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(qPaymentInsert)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'tx-1'"})

	tx := "tx-1"
	err := NewPaymentRepo(db).Create(context.Background(), &model.Payment{
		OrderID: 1, Amount: decimal.NewFromInt(5), Method: model.MethodPayPal, TransactionID: &tx, Status: model.PaymentPending,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCategoryCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(qCategoryInsert)).WithArgs("Books", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062})
	mock.ExpectExec(regexp.QuoteMeta(qCategoryInsert)).WithArgs("Games", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	repo := NewCategoryRepo(db)
	assert.ErrorIs(t, repo.Create(context.Background(), &model.Category{Name: "Books"}), ErrDuplicate)

	err := repo.Create(context.Background(), &model.Category{Name: "Games"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestProductListByCategory(t *testing.T) {
	now := time.Now()
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(qProductByCategory)).WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "category_id", "creationtime", "updatetime"}).
			AddRow(1, "Go book", "", "39.90", 3, now, now))

	ps, err := NewProductRepo(db).ListByCategory(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "39.90", ps[0].Price.StringFixed(2))
}
