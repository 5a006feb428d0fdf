// Package bus provides the message-bus boundary of the scorer: narrow
// Publisher/Subscriber interfaces, topic helpers, and an MQTT adapter
// built on paho. Transport reconnection mechanics stay inside this package.
package bus
