//go:build rp2040 || rp2350

package console

import (
	"io"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

const uartBaud = 115200

// mirror writes each line to the USB console and to UART0.
type mirror struct {
	u *uartx.UART
}

func (m *mirror) Write(p []byte) (int, error) {
	print(string(p))
	return m.u.Write(p)
}

func defaultOutput() io.Writer {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: uartBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return &mirror{u: u}
}
