package produce

import amqp "github.com/rabbitmq/amqp091-go"

const InventoryExchange = "inventory.exchange"

type Produce struct {
	EmailService     *EmailService
	InventoryService *InventoryService
	ReportService    *ReportService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	emailService := InitEmailService(channel)
	if emailService == nil {
		panic("Failed to initialize Email service")
	}

	inventoryService := InitInventoryService(channel)
	if inventoryService == nil {
		panic("Failed to initialize Inventory service")
	}

	reportService := InitReportService(channel)
	if reportService == nil {
		panic("Failed to initialize Report service")
	}

	produceInstance = &Produce{
		EmailService:     emailService,
		InventoryService: inventoryService,
		ReportService:    reportService,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}

func declareInventoryExchange(channel *amqp.Channel) error {
	return channel.ExchangeDeclare(
		InventoryExchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	)
}
