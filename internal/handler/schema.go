package handler

import (
	"github.com/graphql-go/graphql"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/service"
)

func nn(t graphql.Type) graphql.Type { return graphql.NewNonNull(t) }

func listOf(t graphql.Type) graphql.Type { return nn(graphql.NewList(nn(t))) }

// NewSchema builds the storefront schema with r's resolvers attached.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Status",
		Fields: graphql.Fields{
			"code":   &graphql.Field{Type: nn(graphql.Int)},
			"status": &graphql.Field{Type: nn(graphql.String)},
			"msg":    &graphql.Field{Type: nn(graphql.String)},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: nn(graphql.ID)},
			"username": &graphql.Field{Type: nn(graphql.String)},
			"email":    &graphql.Field{Type: nn(graphql.String)},
			"nickname": &graphql.Field{Type: nn(graphql.String)},
			"avatar":   &graphql.Field{Type: nn(graphql.String)},
			"role":     &graphql.Field{Type: nn(graphql.String)},
			"gender":   &graphql.Field{Type: nn(graphql.String)},
			"dateOfBirth": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, ok := p.Source.(*model.User)
					if !ok || u.DateOfBirth == nil {
						return nil, nil
					}
					return u.DateOfBirth.Format(service.DateOfBirthLayout), nil
				},
			},
			"creationtime": &graphql.Field{Type: nn(graphql.DateTime)},
			"updatetime":   &graphql.Field{Type: nn(graphql.DateTime)},
		},
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"user":        &graphql.Field{Type: nn(userType)},
			"accessToken": &graphql.Field{Type: nn(graphql.String)},
		},
	})

	refreshPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RefreshPayload",
		Fields: graphql.Fields{
			"accessToken": &graphql.Field{Type: nn(graphql.String)},
		},
	})

	// Category and Product reference each other, so their fields are thunks.
	var categoryType, productType *graphql.Object
	categoryType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":   &graphql.Field{Type: nn(graphql.ID)},
				"name": &graphql.Field{Type: nn(graphql.String)},
				"products": &graphql.Field{
					Type:    listOf(productType),
					Resolve: resolve(r.categoryProducts),
				},
				"creationtime": &graphql.Field{Type: nn(graphql.DateTime)},
				"updatetime":   &graphql.Field{Type: nn(graphql.DateTime)},
			}
		}),
	})
	productType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: nn(graphql.ID)},
				"name":        &graphql.Field{Type: nn(graphql.String)},
				"description": &graphql.Field{Type: nn(graphql.String)},
				"price": &graphql.Field{
					Type: nn(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return p.Source.(*model.Product).Price.StringFixed(2), nil
					},
				},
				"categoryId": &graphql.Field{Type: nn(graphql.ID)},
				"category": &graphql.Field{
					Type:    categoryType,
					Resolve: resolve(r.productCategory),
				},
				"creationtime": &graphql.Field{Type: nn(graphql.DateTime)},
				"updatetime":   &graphql.Field{Type: nn(graphql.DateTime)},
			}
		}),
	})

	orderItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: nn(graphql.ID)},
			"productId": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					it := p.Source.(*model.OrderItem)
					if it.ProductID == nil {
						return nil, nil
					}
					return *it.ProductID, nil
				},
			},
			"quantity": &graphql.Field{Type: nn(graphql.Int)},
			"priceAtOrder": &graphql.Field{
				Type: nn(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*model.OrderItem).PriceAtOrder.StringFixed(2), nil
				},
			},
			"product": &graphql.Field{
				Type:    productType,
				Resolve: resolve(r.orderItemProduct),
			},
		},
	})

	paymentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Payment",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: nn(graphql.ID)},
			"orderId": &graphql.Field{Type: nn(graphql.ID)},
			"amount": &graphql.Field{
				Type: nn(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*model.Payment).Amount.StringFixed(2), nil
				},
			},
			"method": &graphql.Field{Type: nn(graphql.String)},
			"transactionId": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if id := p.Source.(*model.Payment).TransactionID; id != nil {
						return *id, nil
					}
					return nil, nil
				},
			},
			"status":      &graphql.Field{Type: nn(graphql.String)},
			"paymentDate": &graphql.Field{Type: nn(graphql.DateTime)},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: nn(graphql.ID)},
			"userId": &graphql.Field{Type: nn(graphql.ID)},
			"totalAmount": &graphql.Field{
				Type: nn(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*model.Order).TotalAmount.StringFixed(2), nil
				},
			},
			"status":          &graphql.Field{Type: nn(graphql.String)},
			"shippingAddress": &graphql.Field{Type: nn(graphql.String)},
			"orderDate":       &graphql.Field{Type: nn(graphql.DateTime)},
			"items":           &graphql.Field{Type: listOf(orderItemType)},
			"payments":        &graphql.Field{Type: listOf(paymentType)},
		},
	})

	// ---- inputs ----

	signupInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SignupInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username": &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
			"email":    &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
			"nickname": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"avatar":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"role":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"gender":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	signinInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SigninInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
		},
	})
	updateUserInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateUserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"email":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"nickname":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"avatar":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"role":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"gender":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"dateOfBirth": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	categoryInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CategoryInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name": &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
		},
	})
	orderItemInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderItemInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"productId": &graphql.InputObjectFieldConfig{Type: nn(graphql.ID)},
			"quantity":  &graphql.InputObjectFieldConfig{Type: nn(graphql.Int)},
		},
	})
	placeOrderInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PlaceOrderInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"shippingAddress": &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
			"items":           &graphql.InputObjectFieldConfig{Type: listOf(orderItemInput)},
		},
	})
	paymentInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PaymentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"orderId":       &graphql.InputObjectFieldConfig{Type: nn(graphql.ID)},
			"amount":        &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
			"method":        &graphql.InputObjectFieldConfig{Type: nn(graphql.String)},
			"transactionId": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"status":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	input := func(t graphql.Input) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{"input": &graphql.ArgumentConfig{Type: nn(t)}}
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"refreshToken": &graphql.Field{Type: nn(refreshPayloadType), Resolve: resolve(r.refreshToken)},
			"user":         &graphql.Field{Type: userType, Resolve: resolve(r.user)},
			"users":        &graphql.Field{Type: listOf(userType), Resolve: resolve(r.users)},
			"categories":   &graphql.Field{Type: listOf(categoryType), Resolve: resolve(r.categories)},
			"products":     &graphql.Field{Type: listOf(productType), Resolve: resolve(r.products)},
			"orders":       &graphql.Field{Type: listOf(orderType), Resolve: resolve(r.orders)},
			"order": &graphql.Field{
				Type:    orderType,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: nn(graphql.ID)}},
				Resolve: resolve(r.order),
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"signup":         &graphql.Field{Type: nn(authPayloadType), Args: input(signupInput), Resolve: resolve(r.signup)},
			"signin":         &graphql.Field{Type: nn(authPayloadType), Args: input(signinInput), Resolve: resolve(r.signin)},
			"logout":         &graphql.Field{Type: nn(statusType), Resolve: resolve(r.logout)},
			"updateUser":     &graphql.Field{Type: nn(statusType), Args: input(updateUserInput), Resolve: resolve(r.updateUser)},
			"createCategory": &graphql.Field{Type: nn(categoryType), Args: input(categoryInput), Resolve: resolve(r.createCategory)},
			"createProduct": &graphql.Field{
				Type: nn(productType),
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: nn(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: nn(graphql.String)},
					"price":       &graphql.ArgumentConfig{Type: nn(graphql.String)},
					"categoryId":  &graphql.ArgumentConfig{Type: nn(graphql.ID)},
				},
				Resolve: resolve(r.createProduct),
			},
			"placeOrder":    &graphql.Field{Type: nn(orderType), Args: input(placeOrderInput), Resolve: resolve(r.placeOrder)},
			"recordPayment": &graphql.Field{Type: nn(paymentType), Args: input(paymentInput), Resolve: resolve(r.recordPayment)},
			"updateOrderStatus": &graphql.Field{
				Type: nn(orderType),
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: nn(graphql.ID)},
					"status": &graphql.ArgumentConfig{Type: nn(graphql.String)},
				},
				Resolve: resolve(r.updateOrderStatus),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
