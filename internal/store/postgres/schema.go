package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSchemaMissing means the remote table or one of its columns does not
// exist yet. This is an actionable condition, not a generic failure: the
// app surfaces SetupSQL so the user can run it in their database console,
// then retries.
var ErrSchemaMissing = errors.New("store: transactions schema missing or outdated")

// SetupSQL creates the transactions table when absent and adds any column
// a previous deployment may lack. Safe to run repeatedly.
const SetupSQL = `-- 1. Cria a tabela básica se não existir
create table if not exists public.transactions (
  id uuid not null primary key default gen_random_uuid(),
  created_at timestamptz default now(),
  user_id uuid not null,
  date date,
  city text,
  amount numeric,
  category text,
  operation text,
  notes text,
  type text
);

-- 2. Garante que RLS (Segurança) está ativado
alter table public.transactions enable row level security;

-- 3. Adiciona colunas que podem estar faltando (Migração Segura)
alter table public.transactions add column if not exists receipt_image text;
alter table public.transactions add column if not exists receipt_amount numeric;
alter table public.transactions add column if not exists origin text;
alter table public.transactions add column if not exists destination text;
alter table public.transactions add column if not exists car_type text;
alter table public.transactions add column if not exists road_type text;
alter table public.transactions add column if not exists distance_km numeric;
alter table public.transactions add column if not exists fuel_type text;
alter table public.transactions add column if not exists price_per_liter numeric;
alter table public.transactions add column if not exists consumption numeric;
alter table public.transactions add column if not exists total_value numeric;

-- 4. Atualiza Políticas de Acesso
drop policy if exists "Users own select" on public.transactions;
drop policy if exists "Users own insert" on public.transactions;
drop policy if exists "Users own update" on public.transactions;
drop policy if exists "Users own delete" on public.transactions;

create policy "Users own select" on public.transactions for select using (auth.uid() = user_id);
create policy "Users own insert" on public.transactions for insert with check (auth.uid() = user_id);
create policy "Users own update" on public.transactions for update using (auth.uid() = user_id);
create policy "Users own delete" on public.transactions for delete using (auth.uid() = user_id);
`

// Postgres error codes for objects that are not there.
const (
	codeUndefinedTable  = "42P01"
	codeUndefinedColumn = "42703"
)

// classifyErr promotes missing-table/missing-column failures to
// ErrSchemaMissing so callers can route the user to the fix-it flow
// instead of retrying a query that can never succeed.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == codeUndefinedTable || pgErr.Code == codeUndefinedColumn {
			return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.Message)
		}
	}
	return err
}
