// Package mq реализует обмен сообщениями через RabbitMQ.
//
// Connection оборачивает amqp-соединение с автоматическим редиалом.
// Publisher публикует события жизненного цикла job (job.pending,
// job.completed), Consumer потребляет их с ручным подтверждением и
// отправкой необработанных сообщений в DLQ. Топология (обменники,
// очереди, привязки) объявляется идемпотентно через SetupTopology.
package mq
