package integration

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sergeybelanov/shop/internal/domain"
	"github.com/sergeybelanov/shop/internal/service/catalog"
	"github.com/sergeybelanov/shop/internal/service/order"
	"github.com/sergeybelanov/shop/internal/service/outbox"
	"github.com/sergeybelanov/shop/internal/storage/memory"
)

// capturingPublisher собирает опубликованные события вместо брокера.
type capturingPublisher struct {
	mu       sync.Mutex
	messages []domain.OutboxMessage
}

func (p *capturingPublisher) Publish(msg domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.messages))
	for _, msg := range p.messages {
		types = append(types, msg.EventType)
	}
	return types
}

// OrderLifecycleTestSuite проверяет полный путь заказа через оба контекста:
// каталог, корзина, submit, переходы статусов и публикация событий из outbox.
type OrderLifecycleTestSuite struct {
	suite.Suite
	catalog   *catalog.Service
	orders    *order.Service
	outbox    domain.OutboxRepository
	history   domain.StatusHistoryRepository
	worker    *outbox.Worker
	publisher *capturingPublisher
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	logger := baseLogger.WithField("component", "integration-test")

	products := memory.NewProductRepository()
	suite.outbox = memory.NewOutboxRepository()
	suite.history = memory.NewStatusHistoryRepository()
	suite.publisher = &capturingPublisher{}

	suite.catalog = catalog.NewService(products, suite.outbox, logger, nil)

	minOrder, err := domain.NewMoneyFromString("10.00", "USD")
	suite.Require().NoError(err)

	suite.orders = order.NewService(
		memory.NewOrderRepository(),
		catalog.NewProductGateway(products),
		suite.outbox,
		suite.history,
		order.NewMinOrderPolicy(minOrder),
		nil,
		logger,
		nil,
	)

	suite.worker = outbox.NewWorker(suite.outbox, suite.publisher, outbox.WithLogger(logger))
}

func (suite *OrderLifecycleTestSuite) money(amount string) domain.Money {
	m, err := domain.NewMoneyFromString(amount, "USD")
	suite.Require().NoError(err)
	return m
}

func (suite *OrderLifecycleTestSuite) address() domain.Address {
	address, err := domain.NewAddress("1 Infinite Loop", "Cupertino", "CA", "95014", "US")
	suite.Require().NoError(err)
	return address
}

func (suite *OrderLifecycleTestSuite) activeProduct(name, price, sku string) domain.Product {
	product, err := suite.catalog.CreateProduct(name, "", suite.money(price), sku)
	suite.Require().NoError(err)
	product, err = suite.catalog.Activate(product.ID)
	suite.Require().NoError(err)
	return product
}

func (suite *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	keyboard := suite.activeProduct("Keyboard", "49.90", "KB-001")
	mouse := suite.activeProduct("Mouse", "19.90", "MS-001")

	created, err := suite.orders.CreateOrder(domain.NewCustomerID(), suite.address(), []order.ItemSpec{
		{ProductID: keyboard.ID, Quantity: 1},
		{ProductID: mouse.ID, Quantity: 2},
	})
	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusDraft, created.Status)

	info, err := domain.NewCustomerInfo("Alex Stone", "alex@example.com", "")
	suite.Require().NoError(err)
	_, err = suite.orders.SetCustomerInfo(created.ID, info)
	suite.Require().NoError(err)

	submitted, err := suite.orders.Submit(created.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusPending, submitted.Status)
	suite.NotEmpty(submitted.OrderNumber)

	total, err := submitted.TotalAmount()
	suite.Require().NoError(err)
	suite.Equal("89.70 USD", total.String())

	for _, step := range []func(domain.OrderID) (domain.Order, error){
		suite.orders.Confirm,
		suite.orders.StartProcessing,
		suite.orders.Ship,
		suite.orders.Deliver,
	} {
		_, err := step(created.ID)
		suite.Require().NoError(err)
	}

	final, err := suite.orders.GetOrder(created.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusDelivered, final.Status)

	history, err := suite.orders.StatusHistory(created.ID)
	suite.Require().NoError(err)
	suite.Len(history, 5)
	suite.Equal(domain.OrderStatusDraft, history[0].From)
	suite.Equal(domain.OrderStatusDelivered, history[4].To)
}

func (suite *OrderLifecycleTestSuite) TestOutboxDeliversEventsToPublisher() {
	product := suite.activeProduct("Keyboard", "49.90", "KB-001")

	created, err := suite.orders.CreateOrder(domain.NewCustomerID(), suite.address(), []order.ItemSpec{
		{ProductID: product.ID, Quantity: 1},
	})
	suite.Require().NoError(err)
	_, err = suite.orders.Submit(created.ID)
	suite.Require().NoError(err)

	suite.worker.ProcessOnce(context.Background())

	types := suite.publisher.eventTypes()
	suite.Contains(types, domain.EventProductCreated)
	suite.Contains(types, domain.EventOrderCreated)
	suite.Contains(types, domain.EventOrderSubmitted)

	// Повторный цикл не должен дублировать доставку.
	before := len(types)
	suite.worker.ProcessOnce(context.Background())
	suite.Len(suite.publisher.eventTypes(), before)
}

func (suite *OrderLifecycleTestSuite) TestSubmittedEventCarriesOrderPayload() {
	product := suite.activeProduct("Keyboard", "49.90", "KB-001")

	created, err := suite.orders.CreateOrder(domain.NewCustomerID(), suite.address(), []order.ItemSpec{
		{ProductID: product.ID, Quantity: 2},
	})
	suite.Require().NoError(err)
	_, err = suite.orders.Submit(created.ID)
	suite.Require().NoError(err)

	suite.worker.ProcessOnce(context.Background())

	var payload map[string]any
	for _, msg := range suite.publisher.messages {
		if msg.EventType == domain.EventOrderSubmitted {
			require.NoError(suite.T(), json.Unmarshal(msg.Payload, &payload))
		}
	}
	suite.Require().NotNil(payload, "expected order.submitted payload")
}

func (suite *OrderLifecycleTestSuite) TestCancelledOrderIsTerminal() {
	product := suite.activeProduct("Keyboard", "49.90", "KB-001")

	created, err := suite.orders.CreateOrder(domain.NewCustomerID(), suite.address(), []order.ItemSpec{
		{ProductID: product.ID, Quantity: 1},
	})
	suite.Require().NoError(err)
	_, err = suite.orders.Submit(created.ID)
	suite.Require().NoError(err)

	cancelled, err := suite.orders.Cancel(created.ID, "customer request")
	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusCancelled, cancelled.Status)
	suite.Equal("customer request", cancelled.CancellationReason)

	_, err = suite.orders.Confirm(created.ID)
	suite.Require().ErrorIs(err, domain.ErrInvalidStatusTransition)
}

func (suite *OrderLifecycleTestSuite) TestDeactivatedProductBlocksSubmit() {
	product := suite.activeProduct("Keyboard", "49.90", "KB-001")

	created, err := suite.orders.CreateOrder(domain.NewCustomerID(), suite.address(), []order.ItemSpec{
		{ProductID: product.ID, Quantity: 1},
	})
	suite.Require().NoError(err)

	_, err = suite.catalog.Deactivate(product.ID)
	suite.Require().NoError(err)

	_, err = suite.orders.Submit(created.ID)
	suite.Require().ErrorIs(err, domain.ErrProductNotAvailable)

	// Заказ остаётся черновиком и может быть отправлен после реактивации.
	_, err = suite.catalog.Activate(product.ID)
	suite.Require().NoError(err)
	submitted, err := suite.orders.Submit(created.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.OrderStatusPending, submitted.Status)
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
