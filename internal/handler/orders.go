package handler

import (
	"github.com/graphql-go/graphql"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/repository"
	"github.com/chenterphai/storefront-api/internal/service"
)

func (r *Resolver) orders(p graphql.ResolveParams) (interface{}, error) {
	ctx, id, err := r.authenticate(p)
	if err != nil {
		return nil, err
	}
	return r.Orders.ListOrders(ctx, id.UserID)
}

func (r *Resolver) order(p graphql.ResolveParams) (interface{}, error) {
	ctx, id, err := r.authenticate(p)
	if err != nil {
		return nil, err
	}
	orderID, err := parseID("id", p.Args["id"])
	if err != nil {
		return nil, err
	}
	return r.Orders.GetOrder(ctx, id.UserID, orderID)
}

func (r *Resolver) placeOrder(p graphql.ResolveParams) (interface{}, error) {
	ctx, id, err := r.authenticate(p)
	if err != nil {
		return nil, err
	}
	in := inputObject(p)
	raw, _ := in["items"].([]interface{})
	lines := make([]repository.OrderLine, 0, len(raw))
	for _, v := range raw {
		item, _ := v.(map[string]interface{})
		pid, err := parseID("productId", item["productId"])
		if err != nil {
			return nil, err
		}
		qty, _ := item["quantity"].(int)
		lines = append(lines, repository.OrderLine{ProductID: pid, Quantity: qty})
	}
	return r.Orders.PlaceOrder(ctx, id.UserID, service.PlaceOrderInput{
		ShippingAddress: str(in, "shippingAddress"),
		Items:           lines,
	})
}

func (r *Resolver) recordPayment(p graphql.ResolveParams) (interface{}, error) {
	ctx, id, err := r.authenticate(p)
	if err != nil {
		return nil, err
	}
	in := inputObject(p)
	orderID, err := parseID("orderId", in["orderId"])
	if err != nil {
		return nil, err
	}
	return r.Orders.RecordPayment(ctx, id.UserID, service.RecordPaymentInput{
		OrderID:       orderID,
		Amount:        str(in, "amount"),
		Method:        model.PaymentMethod(str(in, "method")),
		TransactionID: optStr(in, "transactionId"),
		Status:        model.PaymentStatus(str(in, "status")),
	})
}

func (r *Resolver) updateOrderStatus(p graphql.ResolveParams) (interface{}, error) {
	ctx, _, err := r.authorize(p, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	orderID, err := parseID("id", p.Args["id"])
	if err != nil {
		return nil, err
	}
	return r.Orders.UpdateOrderStatus(ctx, orderID, model.OrderStatus(str(p.Args, "status")))
}
