// Package audit реализует append-only журнал аудита.
//
// Журнал — файл в формате JSON Lines. Каждая запись добавляется одним
// вызовом write(2) в файл, открытый с O_APPEND, под эксклюзивным flock.
// Несколько процессов (deploy и backup) могут писать одновременно,
// строки не перемешиваются.
//
// Записи никогда не переписываются. Читатели сканируют журнал с конца
// (Tail). Ротация выполняется внешними средствами.
//
// Дополнительно записи можно дублировать во вторичный Sink (например,
// таблицу PostgreSQL, см. пакет repo) через Tee. Ошибки вторичного
// приёмника не влияют на исход операции.
package audit
