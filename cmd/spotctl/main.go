// spotctl - офлайн-проверка выбора спота и сверки маркеров по JSON/YAML фикстурам,
// плюс вызов удалённого API с обновлением сессии.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
